package platform

import (
	"time"

	"github.com/gen2brain/beeep"
)

// DesktopProvider renders notifications through the OS notification daemon.
// Desktop toasts dismiss themselves and expose no handle, so cancellation is
// a no-op here; buttons are folded into the message text.
type DesktopProvider struct{}

func NewDesktopProvider() *DesktopProvider {
	return &DesktopProvider{}
}

func (p *DesktopProvider) Notify(n Notification) error {
	body := n.Message
	if len(n.Buttons) > 0 {
		body += "\n"
		for i, b := range n.Buttons {
			if i > 0 {
				body += " / "
			}
			body += b
		}
	}

	if n.HighPriority {
		return beeep.Alert(n.Title, body, "")
	}
	return beeep.Notify(n.Title, body, "")
}

func (p *DesktopProvider) CancelNotification(id int) {}

func (p *DesktopProvider) CancelAll() {}

// Vibrate has no hardware to drive on desktop. Logged once per call at the
// trigger, not here, to keep pulse loops quiet.
func (p *DesktopProvider) Vibrate(d time.Duration) error {
	_ = d
	return nil
}

var _ Provider = (*DesktopProvider)(nil)
