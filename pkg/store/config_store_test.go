package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/task-minder/pkg/models"
)

func TestConfigLoadMissingFileGivesDefaults(t *testing.T) {
	cs := NewConfigStore(filepath.Join(t.TempDir(), "config.yaml"))
	cfg := cs.Load()

	defaults := models.DefaultConfig()
	assert.Equal(t, defaults.PollIntervalMS, cfg.PollIntervalMS)
	assert.Equal(t, defaults.SnoozeShortSec, cfg.SnoozeShortSec)
	assert.Equal(t, defaults.SnoozeLongSec, cfg.SnoozeLongSec)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cs := NewConfigStore(path)

	cfg := models.DefaultConfig()
	cfg.PollIntervalMS = 250
	cfg.SnoozeShortSec = 30
	cfg.AutoStart = true
	require.NoError(t, cs.Save(cfg))

	loaded := cs.Load()
	assert.Equal(t, 250, loaded.PollIntervalMS)
	assert.Equal(t, 30, loaded.SnoozeShortSec)
	assert.True(t, loaded.AutoStart)
}

func TestConfigCorruptFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::: not yaml {{{"), 0o644))

	cfg := NewConfigStore(path).Load()
	assert.Equal(t, models.DefaultConfig().PollIntervalMS, cfg.PollIntervalMS)
}
