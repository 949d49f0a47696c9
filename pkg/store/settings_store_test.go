package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSettings(t *testing.T) *SettingsStore {
	t.Helper()
	s, err := OpenSettings(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	return s
}

func TestSettingsStringRoundTrip(t *testing.T) {
	s := openTestSettings(t)

	_, ok := s.GetString("missing")
	assert.False(t, ok)

	require.NoError(t, s.SetString("greeting", "hello"))
	v, ok := s.GetString("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	require.NoError(t, s.SetString("greeting", "bye"))
	v, _ = s.GetString("greeting")
	assert.Equal(t, "bye", v, "set overwrites")
}

func TestSettingsTypedAccessors(t *testing.T) {
	s := openTestSettings(t)

	require.NoError(t, s.SetBool("flag", true))
	b, ok := s.GetBool("flag")
	require.True(t, ok)
	assert.True(t, b)

	require.NoError(t, s.SetInt("count", 42))
	n, ok := s.GetInt("count")
	require.True(t, ok)
	assert.Equal(t, 42, n)

	// A non-int value reads back as absent, not an error.
	require.NoError(t, s.SetString("count", "many"))
	_, ok = s.GetInt("count")
	assert.False(t, ok)
}

func TestCancelledTaskHandoff(t *testing.T) {
	s := openTestSettings(t)

	_, ok := s.CancelledTaskID()
	assert.False(t, ok)

	require.NoError(t, s.SetCancelledTaskID("task-123"))
	id, ok := s.CancelledTaskID()
	require.True(t, ok)
	assert.Equal(t, "task-123", id)

	require.NoError(t, s.ClearCancelledTaskID())
	_, ok = s.CancelledTaskID()
	assert.False(t, ok)

	// Clearing twice is harmless.
	require.NoError(t, s.ClearCancelledTaskID())
}

func TestExpiredTaskSlot(t *testing.T) {
	s := openTestSettings(t)

	require.NoError(t, s.SetExpiredTaskID("task-9"))
	id, ok := s.ExpiredTaskID()
	require.True(t, ok)
	assert.Equal(t, "task-9", id)

	require.NoError(t, s.ClearExpiredTaskID())
	_, ok = s.ExpiredTaskID()
	assert.False(t, ok)
}
