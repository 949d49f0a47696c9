package models

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings shared by both processes.
type Config struct {
	DataDir             string `yaml:"data_dir"`
	AlarmsDir           string `yaml:"alarms_dir"`
	RecordingsDir       string `yaml:"recordings_dir"`
	PollIntervalMS      int    `yaml:"poll_interval_ms"`
	RefreshCheckCadence int    `yaml:"refresh_check_cadence"`
	SnoozeShortSec      int    `yaml:"snooze_short_sec"`
	SnoozeLongSec       int    `yaml:"snooze_long_sec"`
	BrokerPort          int    `yaml:"broker_port"`
	AutoStart           bool   `yaml:"auto_start"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	dataDir := "task-minder"
	if base, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(base, "task-minder")
	}
	return &Config{
		DataDir:             dataDir,
		AlarmsDir:           filepath.Join(dataDir, "alarms"),
		RecordingsDir:       filepath.Join(dataDir, "recordings"),
		PollIntervalMS:      500,
		RefreshCheckCadence: 6,
		SnoozeShortSec:      60,
		SnoozeLongSec:       120,
		BrokerPort:          4233,
		AutoStart:           false,
	}
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c *Config) SnoozeShort() time.Duration {
	return time.Duration(c.SnoozeShortSec) * time.Second
}

func (c *Config) SnoozeLong() time.Duration {
	return time.Duration(c.SnoozeLongSec) * time.Second
}

func (c *Config) TasksPath() string {
	return filepath.Join(c.DataDir, "tasks.json")
}

func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "settings.db")
}

func (c *Config) FlagsDir() string {
	return filepath.Join(c.DataDir, "flags")
}

func (c *Config) BrokerURL() string {
	return fmt.Sprintf("nats://127.0.0.1:%d", c.BrokerPort)
}
