package platform

import (
	"sync"
	"time"
)

// FakeProvider records every capability call for assertions in tests.
type FakeProvider struct {
	mu sync.Mutex

	Shown      []Notification
	Cancelled  []int
	CancelAlls int
	Vibrations []time.Duration
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{}
}

func (p *FakeProvider) Notify(n Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Shown = append(p.Shown, n)
	return nil
}

func (p *FakeProvider) CancelNotification(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Cancelled = append(p.Cancelled, id)
}

func (p *FakeProvider) CancelAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CancelAlls++
}

func (p *FakeProvider) Vibrate(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Vibrations = append(p.Vibrations, d)
	return nil
}

// ShownWithID returns the notifications shown under the given ID, in order.
func (p *FakeProvider) ShownWithID(id int) []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Notification
	for _, n := range p.Shown {
		if n.ID == id {
			out = append(out, n)
		}
	}
	return out
}

// VibrationCount returns how many pulses were requested.
func (p *FakeProvider) VibrationCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Vibrations)
}

var _ Provider = (*FakeProvider)(nil)
