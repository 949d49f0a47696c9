// Package platform abstracts the host capabilities the core needs
// (notifications, vibration) behind a small provider interface, so the
// monitor, trigger, and dispatcher can be exercised against a fake.
package platform

import "time"

// Notification IDs used by the dispatcher.
const (
	ForegroundNotificationID = 1
	AlertNotificationID      = 2
)

// Notification is the content contract handed to the host surface. Rendering
// is the host's problem; the core only decides what to show.
type Notification struct {
	ID           int
	Title        string
	Message      string
	HighPriority bool
	Buttons      []string
}

// Provider is the capability surface injected into the core components.
type Provider interface {
	// Notify shows or replaces the notification with the same ID.
	Notify(n Notification) error
	// CancelNotification removes a shown notification. Unknown IDs are a
	// no-op.
	CancelNotification(id int)
	// CancelAll removes every notification this process has shown.
	CancelAll()
	// Vibrate pulses the vibrator, where one exists, for the duration.
	Vibrate(d time.Duration) error
}
