package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/task-minder/pkg/models"
)

func writeStore(t *testing.T, content string) *TaskStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return NewTaskStore(path)
}

func TestLoadActiveTasksFiltersPastDates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	ts := writeStore(t, `{
		"2026-03-09": [{"task_id": "old", "message": "yesterday", "timestamp": "2026-03-09T10:00:00"}],
		"2026-03-10": [{"task_id": "today", "message": "today", "timestamp": "2026-03-10T15:00:00"}],
		"2026-03-11": [{"task_id": "tomorrow", "message": "tomorrow", "timestamp": "2026-03-11T09:00:00"}]
	}`)

	groups := ts.LoadActiveTasks(now)
	require.Len(t, groups, 2)
	assert.Equal(t, "2026-03-10", groups[0].Date)
	assert.Equal(t, "2026-03-11", groups[1].Date)
	for _, g := range groups {
		assert.GreaterOrEqual(t, g.Date, now.Format(models.DateKeyLayout))
	}
}

func TestLoadActiveTasksSortsTasksAndGroups(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	ts := writeStore(t, `{
		"2026-03-11": [{"task_id": "c", "message": "", "timestamp": "2026-03-11T09:00:00"}],
		"2026-03-10": [
			{"task_id": "b", "message": "", "timestamp": "2026-03-10T18:00:00"},
			{"task_id": "a", "message": "", "timestamp": "2026-03-10T09:00:00"}
		]
	}`)

	groups := ts.LoadActiveTasks(now)
	require.Len(t, groups, 2)
	assert.Equal(t, "2026-03-10", groups[0].Date, "groups ordered by first task timestamp")
	require.Len(t, groups[0].Tasks, 2)
	assert.Equal(t, "a", groups[0].Tasks[0].ID)
	assert.Equal(t, "b", groups[0].Tasks[1].ID)

	for _, g := range groups {
		for i := 1; i < len(g.Tasks); i++ {
			assert.False(t, g.Tasks[i].Timestamp.Time().Before(g.Tasks[i-1].Timestamp.Time()),
				"timestamps non-decreasing within a group")
		}
	}
}

func TestLoadActiveTasksSkipsMalformedGroup(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	ts := writeStore(t, `{
		"2026-03-10": [{"task_id": "bad", "timestamp": 12345}],
		"2026-03-11": [{"task_id": "good", "message": "ok", "timestamp": "2026-03-11T09:00:00"}]
	}`)

	groups := ts.LoadActiveTasks(now)
	require.Len(t, groups, 1)
	assert.Equal(t, "good", groups[0].Tasks[0].ID)
}

func TestLoadActiveTasksEmptyStoreGivesStartTask(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	ts := NewTaskStore(filepath.Join(t.TempDir(), "missing.json"))

	groups := ts.LoadActiveTasks(now)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Tasks, 1)

	start := groups[0].Tasks[0]
	assert.Equal(t, models.StartTaskID, start.ID)
	assert.True(t, start.Expired)
	assert.Equal(t, now.Add(-time.Minute), start.Timestamp.Time())
}

func TestLoadActiveTasksCorruptFileTreatedAsEmpty(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	ts := writeStore(t, `{not json`)

	groups := ts.LoadActiveTasks(now)
	require.Len(t, groups, 1)
	assert.Equal(t, models.StartTaskID, groups[0].Tasks[0].ID)
}

func TestAddAndRemoveRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	ts := NewTaskStore(filepath.Join(t.TempDir(), "tasks.json"))

	early := models.Task{ID: "early", Message: "first", Timestamp: models.LocalTime(now.Add(time.Hour))}
	late := models.Task{ID: "late", Message: "second", Timestamp: models.LocalTime(now.Add(2 * time.Hour))}

	require.NoError(t, ts.Add(late))
	require.NoError(t, ts.Add(early))

	groups := ts.LoadActiveTasks(now)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Tasks, 2)
	assert.Equal(t, "early", groups[0].Tasks[0].ID, "insert keeps the group ordered")

	require.NoError(t, ts.Remove("early"))
	groups = ts.LoadActiveTasks(now)
	require.Len(t, groups[0].Tasks, 1)
	assert.Equal(t, "late", groups[0].Tasks[0].ID)

	// Removing an unknown ID is a logged no-op.
	require.NoError(t, ts.Remove("nope"))
}
