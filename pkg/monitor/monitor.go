// Package monitor tracks the current and expired task slots for one process.
// Each process (app and daemon) owns its own Monitor; they converge through
// the task store, flag files, and broadcast actions, never shared memory.
package monitor

import (
	"log"
	"sync"
	"time"

	"github.com/borgmon/task-minder/pkg/models"
)

// Loader supplies the active task view. Satisfied by *store.TaskStore.
type Loader interface {
	LoadActiveTasks(now time.Time) []models.TaskGroup
}

// Hooks receive side-effect callbacks on user-driven transitions. The app and
// daemon differ only in these hooks (the app notifies the daemon, the daemon
// doesn't need to), so they are injected rather than subclassed in.
type Hooks interface {
	OnSnoozed(task models.Task, total time.Duration)
	OnCancelled(task models.Task)
}

// NopHooks is the default no-op Hooks implementation.
type NopHooks struct{}

func (NopHooks) OnSnoozed(models.Task, time.Duration) {}
func (NopHooks) OnCancelled(models.Task)              {}

// Monitor owns the per-process expiry state: the cached active task groups,
// the current (earliest not-yet-due) task, the expired task awaiting
// acknowledgment, and the snooze offset accumulated for the current task.
type Monitor struct {
	mu     sync.Mutex
	loader Loader
	hooks  Hooks

	// Now is the clock used for all due comparisons. Tests substitute it.
	Now func() time.Time

	snoozeShort time.Duration
	snoozeLong  time.Duration

	activeTasks     []models.TaskGroup
	currentTask     *models.Task
	expiredTask     *models.Task
	snoozeTime      time.Duration
	foregroundStale bool
}

func New(loader Loader, hooks Hooks, snoozeShort, snoozeLong time.Duration) *Monitor {
	if hooks == nil {
		hooks = NopHooks{}
	}
	return &Monitor{
		loader:      loader,
		hooks:       hooks,
		Now:         time.Now,
		snoozeShort: snoozeShort,
		snoozeLong:  snoozeLong,
	}
}

// Refresh reloads the store and re-derives the current task. When the
// earliest pending task's identity changes, the snooze offset is reset, the
// expired slot cleared, and the foreground notification marked stale.
func (m *Monitor) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	m.activeTasks = m.loader.LoadActiveTasks(now)
	m.deriveCurrent(now)
}

// GetCurrentTask re-derives the current task from the cached groups and
// returns it. Tasks already past their adjusted due time are skipped; only
// the earliest not-yet-due candidate is tracked.
func (m *Monitor) GetCurrentTask() *models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deriveCurrent(m.Now())
	return m.currentTask
}

// deriveCurrent scans the cached groups for the earliest task whose adjusted
// due time is still in the future. Caller holds the lock.
func (m *Monitor) deriveCurrent(now time.Time) {
	var next *models.Task
scan:
	for gi := range m.activeTasks {
		group := &m.activeTasks[gi]
		for ti := range group.Tasks {
			task := &group.Tasks[ti]
			if task.Timestamp.Time().Add(m.snoozeTime).After(now) {
				next = task
				break scan
			}
		}
	}

	if sameTask(next, m.currentTask) {
		// Identity unchanged. If a snooze pushed the due time back into the
		// future, the pending expiry is withdrawn.
		if m.expiredTask != nil && m.currentTask != nil &&
			m.currentTask.Timestamp.Time().Add(m.snoozeTime).After(now) {
			m.expiredTask = nil
			m.foregroundStale = true
		}
		return
	}

	m.currentTask = next
	m.expiredTask = nil
	m.snoozeTime = 0
	m.foregroundStale = true
	if next != nil {
		log.Printf("Current task is now %s (%q, due %s)",
			next.ID, next.Message, next.Timestamp.Time().Format(models.TimestampLayout))
	} else {
		log.Println("No current task")
	}
}

// CurrentTask returns the current task slot without re-deriving it.
func (m *Monitor) CurrentTask() *models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTask
}

// ExpiredTask returns the expired task slot, nil when nothing awaits
// acknowledgment.
func (m *Monitor) ExpiredTask() *models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiredTask
}

// SnoozeTime returns the snooze offset accumulated for the current task.
func (m *Monitor) SnoozeTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snoozeTime
}

// IsExpired reports whether the current task's adjusted due time has passed.
// The comparison uses the wall clock at call time.
func (m *Monitor) IsExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isExpiredLocked(m.Now())
}

func (m *Monitor) isExpiredLocked(now time.Time) bool {
	if m.currentTask == nil {
		return false
	}
	return !now.Before(m.currentTask.Timestamp.Time().Add(m.snoozeTime))
}

// HandleExpiredTask moves the current task into the expired slot the first
// time its adjusted due time has passed, and returns it so the caller can
// alarm and notify exactly once. Returns nil when nothing newly expired.
// The caller must not re-invoke while the expired slot is still occupied.
func (m *Monitor) HandleExpiredTask() *models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isExpiredLocked(m.Now()) {
		return nil
	}

	m.expiredTask = m.currentTask
	m.foregroundStale = true
	log.Printf("Task %s (%q) expired", m.expiredTask.ID, m.expiredTask.Message)
	return m.expiredTask
}

// Snooze adds the offset selected by the action (SNOOZE_A or SNOOZE_B) to the
// current task's due comparison, then re-derives the slots. Snoozing never
// changes the current task's identity, only its effective due time.
func (m *Monitor) Snooze(action models.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentTask == nil {
		log.Println("Snooze with no current task, ignoring")
		return
	}

	switch action {
	case models.ActionSnoozeA:
		m.snoozeTime += m.snoozeShort
	case models.ActionSnoozeB:
		m.snoozeTime += m.snoozeLong
	default:
		log.Printf("Unknown snooze action %q, ignoring", action)
		return
	}

	task := *m.currentTask
	total := m.snoozeTime
	log.Printf("Task %s snoozed, total offset %s", task.ID, total)

	now := m.Now()
	m.activeTasks = m.loader.LoadActiveTasks(now)
	m.deriveCurrent(now)

	m.hooks.OnSnoozed(task, total)
}

// Cancel clears both slots and the snooze offset.
func (m *Monitor) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cancelled := m.expiredTask
	if cancelled == nil {
		cancelled = m.currentTask
	}

	m.currentTask = nil
	m.expiredTask = nil
	m.snoozeTime = 0
	m.foregroundStale = true

	if cancelled != nil {
		log.Printf("Task %s (%q) cancelled", cancelled.ID, cancelled.Message)
		m.hooks.OnCancelled(*cancelled)
	} else {
		log.Println("Cancel with no tracked task")
	}
}

// ConsumeForegroundStale reports whether the foreground notification content
// needs re-rendering since the last call, and clears the flag.
func (m *Monitor) ConsumeForegroundStale() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	stale := m.foregroundStale
	m.foregroundStale = false
	return stale
}

func sameTask(a, b *models.Task) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}
