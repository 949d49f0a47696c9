package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/task-minder/pkg/models"
)

type stubLoader struct {
	groups []models.TaskGroup
}

func (s *stubLoader) LoadActiveTasks(now time.Time) []models.TaskGroup {
	return s.groups
}

func makeTask(id string, ts time.Time) models.Task {
	return models.Task{ID: id, Message: "task " + id, Timestamp: models.LocalTime(ts)}
}

func groupFor(tasks ...models.Task) []models.TaskGroup {
	if len(tasks) == 0 {
		return nil
	}
	return []models.TaskGroup{{
		Date:  tasks[0].Timestamp.Time().Format(models.DateKeyLayout),
		Tasks: tasks,
	}}
}

func newTestMonitor(loader Loader, now time.Time) *Monitor {
	m := New(loader, nil, 60*time.Second, 120*time.Second)
	m.Now = func() time.Time { return now }
	return m
}

func TestGetCurrentTaskPicksEarliestPending(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	past := makeTask("past", now.Add(-time.Hour))
	soon := makeTask("soon", now.Add(10*time.Minute))
	later := makeTask("later", now.Add(2*time.Hour))

	loader := &stubLoader{groups: groupFor(past, soon, later)}
	m := newTestMonitor(loader, now)
	m.Refresh()

	cur := m.GetCurrentTask()
	require.NotNil(t, cur)
	assert.Equal(t, "soon", cur.ID, "overdue tasks are skipped, earliest pending wins")
}

func TestGetCurrentTaskNilWhenNothingPending(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	loader := &stubLoader{groups: groupFor(makeTask("past", now.Add(-time.Minute)))}
	m := newTestMonitor(loader, now)
	m.Refresh()

	assert.Nil(t, m.GetCurrentTask())
	assert.False(t, m.IsExpired())
}

func TestIsExpiredFlipsAtAdjustedDueTime(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	due := start.Add(2 * time.Second)
	loader := &stubLoader{groups: groupFor(makeTask("t1", due))}

	now := start
	m := New(loader, nil, 60*time.Second, 120*time.Second)
	m.Now = func() time.Time { return now }
	m.Refresh()

	require.NotNil(t, m.GetCurrentTask())
	assert.False(t, m.IsExpired(), "not yet due")

	now = due
	assert.True(t, m.IsExpired(), "expired exactly at timestamp+snooze")
}

func TestHandleExpiredTaskMovesCurrentIntoExpiredSlot(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	loader := &stubLoader{groups: groupFor(makeTask("t1", now.Add(-time.Second)))}

	m := newTestMonitor(loader, now.Add(-2*time.Second))
	m.Refresh()
	require.NotNil(t, m.CurrentTask())

	m.Now = func() time.Time { return now }
	expired := m.HandleExpiredTask()
	require.NotNil(t, expired)
	assert.Equal(t, "t1", expired.ID)
	require.NotNil(t, m.ExpiredTask())
	assert.Equal(t, "t1", m.ExpiredTask().ID)
}

func TestHandleExpiredTaskNilWhenNotDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	loader := &stubLoader{groups: groupFor(makeTask("t1", now.Add(time.Hour)))}
	m := newTestMonitor(loader, now)
	m.Refresh()

	assert.Nil(t, m.HandleExpiredTask())
	assert.Nil(t, m.ExpiredTask())
}

func TestSnoozeAccumulatesAndKeepsIdentity(t *testing.T) {
	due := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	loader := &stubLoader{groups: groupFor(makeTask("t1", due))}

	clock := due.Add(-time.Minute)
	m := New(loader, nil, 60*time.Second, 120*time.Second)
	m.Now = func() time.Time { return clock }
	m.Refresh()
	require.NotNil(t, m.CurrentTask())

	clock = due
	m.HandleExpiredTask()
	require.NotNil(t, m.ExpiredTask())

	m.Snooze(models.ActionSnoozeA)
	assert.Equal(t, 60*time.Second, m.SnoozeTime())

	m.Snooze(models.ActionSnoozeB)
	assert.Equal(t, 180*time.Second, m.SnoozeTime())

	cur := m.CurrentTask()
	require.NotNil(t, cur)
	assert.Equal(t, "t1", cur.ID, "snoozing never changes identity")
	assert.Nil(t, m.ExpiredTask(), "snooze withdraws the pending expiry")
	assert.False(t, m.IsExpired())
}

func TestSnoozeHookReceivesRunningTotal(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	loader := &stubLoader{groups: groupFor(makeTask("t1", now.Add(time.Minute)))}

	var gotTask models.Task
	var gotTotal time.Duration
	hooks := hookFuncs{
		onSnoozed: func(task models.Task, total time.Duration) {
			gotTask = task
			gotTotal = total
		},
	}

	m := New(loader, hooks, 60*time.Second, 120*time.Second)
	m.Now = func() time.Time { return now }
	m.Refresh()

	m.Snooze(models.ActionSnoozeB)
	assert.Equal(t, "t1", gotTask.ID)
	assert.Equal(t, 120*time.Second, gotTotal)
}

func TestCancelResetsEverything(t *testing.T) {
	due := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	loader := &stubLoader{groups: groupFor(makeTask("t1", due))}

	var cancelled []string
	hooks := hookFuncs{
		onCancelled: func(task models.Task) { cancelled = append(cancelled, task.ID) },
	}

	clock := due.Add(-time.Minute)
	m := New(loader, hooks, 60*time.Second, 120*time.Second)
	m.Now = func() time.Time { return clock }
	m.Refresh()
	require.NotNil(t, m.CurrentTask())

	clock = due
	m.HandleExpiredTask()
	m.Snooze(models.ActionSnoozeA)

	m.Cancel()
	assert.Nil(t, m.CurrentTask())
	assert.Nil(t, m.ExpiredTask())
	assert.Zero(t, m.SnoozeTime())
	assert.Equal(t, []string{"t1"}, cancelled)
}

func TestRefreshReplacesCurrentWithEarlierNewTask(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	taskX := makeTask("x", now.Add(time.Hour))
	loader := &stubLoader{groups: groupFor(taskX)}

	m := newTestMonitor(loader, now)
	m.Refresh()
	m.ConsumeForegroundStale()
	require.Equal(t, "x", m.CurrentTask().ID)

	// Task Y lands in the store, earlier than X but still in the future.
	taskY := makeTask("y", now.Add(30*time.Minute))
	loader.groups = groupFor(taskY, taskX)
	m.Refresh()

	require.NotNil(t, m.CurrentTask())
	assert.Equal(t, "y", m.CurrentTask().ID)
	assert.True(t, m.ConsumeForegroundStale(), "identity change flags the foreground for update")
	assert.False(t, m.ConsumeForegroundStale(), "flag is consumed")
	assert.Zero(t, m.SnoozeTime(), "snooze is scoped to one current task")
}

func TestRefreshKeepsIdentityWithoutFlaggingForeground(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	loader := &stubLoader{groups: groupFor(makeTask("x", now.Add(time.Hour)))}

	m := newTestMonitor(loader, now)
	m.Refresh()
	m.ConsumeForegroundStale()

	m.Refresh()
	assert.False(t, m.ConsumeForegroundStale())
}

// hookFuncs adapts bare funcs to the Hooks interface for tests.
type hookFuncs struct {
	onSnoozed   func(models.Task, time.Duration)
	onCancelled func(models.Task)
}

func (h hookFuncs) OnSnoozed(task models.Task, total time.Duration) {
	if h.onSnoozed != nil {
		h.onSnoozed(task, total)
	}
}

func (h hookFuncs) OnCancelled(task models.Task) {
	if h.onCancelled != nil {
		h.onCancelled(task)
	}
}
