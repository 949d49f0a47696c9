package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Keys for the task-ID handoff slots. The daemon writes these so the app can
// pick up a cancellation or expiry that happened while it was not running.
const (
	keyCancelledTaskID = "cancelled_task_id"
	keyExpiredTaskID   = "expired_task_id"
)

// Setting is one persisted key-value pair.
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// SettingsStore is a generic key-value store backed by SQLite so both
// processes can read and write it without coordinating.
type SettingsStore struct {
	db *gorm.DB
}

// OpenSettings opens (and migrates) the settings database at path.
func OpenSettings(path string) (*SettingsStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}

	if err := db.AutoMigrate(&Setting{}); err != nil {
		return nil, fmt.Errorf("migrate settings db: %w", err)
	}

	return &SettingsStore{db: db}, nil
}

func (s *SettingsStore) GetString(key string) (string, bool) {
	var row Setting
	if err := s.db.First(&row, "key = ?", key).Error; err != nil {
		return "", false
	}
	return row.Value, true
}

func (s *SettingsStore) SetString(key, value string) error {
	if err := s.db.Save(&Setting{Key: key, Value: value}).Error; err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) GetBool(key string) (bool, bool) {
	raw, ok := s.GetString(key)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Setting %s holds non-bool value %q", key, raw)
		return false, false
	}
	return v, true
}

func (s *SettingsStore) SetBool(key string, value bool) error {
	return s.SetString(key, strconv.FormatBool(value))
}

func (s *SettingsStore) GetInt(key string) (int, bool) {
	raw, ok := s.GetString(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Setting %s holds non-int value %q", key, raw)
		return 0, false
	}
	return v, true
}

func (s *SettingsStore) SetInt(key string, value int) error {
	return s.SetString(key, strconv.Itoa(value))
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *SettingsStore) Delete(key string) error {
	if err := s.db.Delete(&Setting{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) CancelledTaskID() (string, bool) {
	return s.GetString(keyCancelledTaskID)
}

func (s *SettingsStore) SetCancelledTaskID(taskID string) error {
	return s.SetString(keyCancelledTaskID, taskID)
}

func (s *SettingsStore) ClearCancelledTaskID() error {
	return s.Delete(keyCancelledTaskID)
}

func (s *SettingsStore) ExpiredTaskID() (string, bool) {
	return s.GetString(keyExpiredTaskID)
}

func (s *SettingsStore) SetExpiredTaskID(taskID string) error {
	return s.SetString(keyExpiredTaskID, taskID)
}

func (s *SettingsStore) ClearExpiredTaskID() error {
	return s.Delete(keyExpiredTaskID)
}
