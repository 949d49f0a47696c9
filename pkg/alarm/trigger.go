// Package alarm produces the perceptible alert for an expired task: looping
// or one-shot audio playback plus an independent vibration pulse loop.
package alarm

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/borgmon/task-minder/pkg/models"
	"github.com/borgmon/task-minder/pkg/platform"
)

const (
	vibratePulse = 500 * time.Millisecond
	vibratePause = 300 * time.Millisecond

	// joinTimeout bounds how long Stop waits for the loops to exit. A loop
	// overrunning it is logged; state is cleared regardless so the monitor
	// loop never wedges on a stuck resource.
	joinTimeout = time.Second
)

// Trigger couples alarm audio and vibration to the expired-task slot. A
// single mutex spans start and stop so they cannot interleave: starting a
// new alarm tears the previous one down completely first.
type Trigger struct {
	mu            sync.Mutex
	provider      platform.Provider
	alarmsDir     string
	recordingsDir string

	player      *Player
	stopChan    chan struct{}
	vibrateDone chan struct{}
	active      bool
}

func NewTrigger(provider platform.Provider, alarmsDir, recordingsDir string) *Trigger {
	return &Trigger{
		provider:      provider,
		alarmsDir:     alarmsDir,
		recordingsDir: recordingsDir,
	}
}

// Trigger starts the alert for the given task. With keep_alarming the audio
// and vibration repeat until Stop; otherwise each fires once. A task whose
// sound cannot be resolved alerts by vibration/notification only.
func (t *Trigger) Trigger(task models.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	stopChan := make(chan struct{})
	vibrateDone := make(chan struct{})

	if path := ResolveSound(task.AlarmName, t.alarmsDir, t.recordingsDir); path != "" {
		if data, err := os.ReadFile(path); err != nil {
			log.Printf("Unable to read sound %s: %v", path, err)
		} else {
			t.player = PlaySound(data, task.KeepAlarming)
		}
	}

	if task.Vibrate && task.KeepAlarming {
		go t.vibrateLoop(stopChan, vibrateDone)
	} else {
		close(vibrateDone)
		if task.Vibrate {
			if err := t.provider.Vibrate(vibratePulse); err != nil {
				log.Printf("Vibration failed: %v", err)
			}
		}
	}

	t.stopChan = stopChan
	t.vibrateDone = vibrateDone
	t.active = true
}

func (t *Trigger) vibrateLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		if err := t.provider.Vibrate(vibratePulse); err != nil {
			log.Printf("Vibration failed: %v", err)
		}
		select {
		case <-stop:
			return
		case <-time.After(vibratePulse + vibratePause):
		}
	}
}

// Stop signals both loops to terminate, waits up to joinTimeout for each,
// and releases the playback device. Calling it with nothing active is a
// no-op, and calling it twice is the same as once.
func (t *Trigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Trigger) stopLocked() {
	if !t.active {
		return
	}

	close(t.stopChan)

	if t.player != nil {
		t.player.Stop()
		select {
		case <-t.player.Done():
		case <-time.After(joinTimeout):
			log.Println("Audio loop did not stop in time")
		}
	}

	select {
	case <-t.vibrateDone:
	case <-time.After(joinTimeout):
		log.Println("Vibration loop did not stop in time")
	}

	t.player = nil
	t.stopChan = nil
	t.vibrateDone = nil
	t.active = false
}

// IsActive reports whether an alert is currently running.
func (t *Trigger) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
