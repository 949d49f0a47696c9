package alarm

import (
	"log"
	"os"
	"path/filepath"
)

// ResolveSound maps a logical alarm name to a WAV file on disk: built-in
// alarms first, then user recordings, first match wins. Returns "" when the
// name is empty or nothing matches; a missing sound means "skip playback",
// never an error.
func ResolveSound(name, alarmsDir, recordingsDir string) string {
	if name == "" {
		return ""
	}

	for _, dir := range []string{alarmsDir, recordingsDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, name+".wav")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	log.Printf("No sound file for alarm %q in %s or %s", name, alarmsDir, recordingsDir)
	return ""
}
