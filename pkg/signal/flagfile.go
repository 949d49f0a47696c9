// Package signal carries the two cross-process channels: level-triggered
// flag files and fire-and-forget broadcast actions. Neither channel is
// ordered relative to the other; receivers must tolerate any interleaving.
package signal

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Well-known flag names.
const (
	FlagTasksChanged = "tasks_changed"
	FlagHeartbeat    = "heartbeat"
)

// FlagFile is a zero-byte marker file used as a level-triggered signal
// between the two processes. Raising is at-least-once: losing a race on
// Consume only delays the reaction to the next poll.
type FlagFile struct {
	path string
}

func NewFlagFile(dir, name string) *FlagFile {
	return &FlagFile{path: filepath.Join(dir, name+".flag")}
}

// Raise creates (or re-touches) the marker. Errors are logged, not returned
// as fatal; the periodic poll provides the retry.
func (f *FlagFile) Raise() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		log.Printf("Unable to create flag dir for %s: %v", f.path, err)
		return err
	}
	if err := os.WriteFile(f.path, nil, 0o644); err != nil {
		log.Printf("Unable to raise flag %s: %v", f.path, err)
		return err
	}
	return nil
}

// IsRaised reports whether the marker currently exists.
func (f *FlagFile) IsRaised() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Consume checks for the marker and deletes it, returning whether it was
// present. A delete failure still counts as consumed; the signal was seen.
func (f *FlagFile) Consume() bool {
	if !f.IsRaised() {
		return false
	}
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		log.Printf("Unable to clear flag %s: %v", f.path, err)
	}
	return true
}

// Clear removes the marker if present.
func (f *FlagFile) Clear() {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		log.Printf("Unable to clear flag %s: %v", f.path, err)
	}
}

// ModTime returns when the marker was last raised, for liveness checks
// against the heartbeat flag.
func (f *FlagFile) ModTime() (time.Time, bool) {
	info, err := os.Stat(f.path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
