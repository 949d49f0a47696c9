// Package dispatch bridges inbound action signals to monitor and trigger
// calls, and renders monitor state into notification content.
package dispatch

import (
	"log"

	"github.com/borgmon/task-minder/pkg/alarm"
	"github.com/borgmon/task-minder/pkg/models"
	"github.com/borgmon/task-minder/pkg/monitor"
	"github.com/borgmon/task-minder/pkg/platform"
	"github.com/borgmon/task-minder/pkg/signal"
	"github.com/borgmon/task-minder/pkg/store"
)

// Dispatcher wires the expiry monitor, alarm trigger, notification surface,
// and peer-process channel together for one process.
type Dispatcher struct {
	monitor     *monitor.Monitor
	trigger     *alarm.Trigger
	provider    platform.Provider
	broadcaster *signal.Broadcaster
	settings    *store.SettingsStore
	peer        string

	// OpenApp foregrounds the app process; injected by the daemon binary.
	OpenApp func()
}

func New(
	mon *monitor.Monitor,
	trigger *alarm.Trigger,
	provider platform.Provider,
	broadcaster *signal.Broadcaster,
	settings *store.SettingsStore,
	peer string,
) *Dispatcher {
	return &Dispatcher{
		monitor:     mon,
		trigger:     trigger,
		provider:    provider,
		broadcaster: broadcaster,
		settings:    settings,
		peer:        peer,
	}
}

// HandleSignal applies one inbound action. Every action is idempotent, and
// any currently-displayed alert notification is cancelled up front.
func (d *Dispatcher) HandleSignal(sig models.Signal) {
	d.provider.CancelNotification(platform.AlertNotificationID)

	switch sig.Action {
	case models.ActionSnoozeA, models.ActionSnoozeB:
		d.monitor.Snooze(sig.Action)
		d.trigger.Stop()
		d.RefreshForeground()
		d.broadcaster.Send(d.peer, models.Signal{Action: models.ActionUpdateTasks})
		d.broadcaster.Send(d.peer, models.Signal{Action: models.ActionStopAlarm})

	case models.ActionCancel:
		if sig.TaskID != "" && !d.tracking(sig.TaskID) {
			// Stale cancel for a task this process has already moved past.
			log.Printf("Ignoring cancel for untracked task %s", sig.TaskID)
			d.trigger.Stop()
			return
		}
		d.persistCancelled(sig)
		d.monitor.Cancel()
		d.trigger.Stop()
		d.RefreshForeground()
		d.broadcaster.Send(d.peer, models.Signal{Action: models.ActionUpdateTasks})
		d.broadcaster.Send(d.peer, models.Signal{Action: models.ActionStopAlarm})

	case models.ActionStopAlarm:
		d.trigger.Stop()

	case models.ActionOpenApp:
		d.monitor.Cancel()
		d.trigger.Stop()
		d.RefreshForeground()
		if d.OpenApp != nil {
			d.OpenApp()
		}

	case models.ActionUpdateTasks:
		d.monitor.Refresh()
		d.RefreshForeground()

	case models.ActionRemoveTaskNotifications:
		// The alert was already cancelled above; the foreground notification
		// stays up.

	case models.ActionRestartService, models.ActionBootCompleted:
		log.Printf("Action %s handled at process level, ignoring here", sig.Action)

	default:
		log.Printf("Unknown action %q, ignoring", sig.Action)
	}
}

// tracking reports whether either monitor slot currently holds the task.
func (d *Dispatcher) tracking(taskID string) bool {
	if t := d.monitor.CurrentTask(); t != nil && t.ID == taskID {
		return true
	}
	if t := d.monitor.ExpiredTask(); t != nil && t.ID == taskID {
		return true
	}
	return false
}

// persistCancelled hands the cancelled task's ID to the peer process via the
// settings store when the cancel came from the alert notification itself
// (swipe or button), so a restarted peer can drop the task too.
func (d *Dispatcher) persistCancelled(sig models.Signal) {
	if sig.NotificationType != models.NotificationTypeAlert || d.settings == nil {
		return
	}

	taskID := sig.TaskID
	if taskID == "" {
		if t := d.monitor.ExpiredTask(); t != nil {
			taskID = t.ID
		} else if t := d.monitor.CurrentTask(); t != nil {
			taskID = t.ID
		}
	}
	if taskID == "" {
		return
	}

	if err := d.settings.SetCancelledTaskID(taskID); err != nil {
		log.Printf("Unable to persist cancelled task id: %v", err)
	}
}

// RefreshForeground re-renders the persistent foreground notification from
// current monitor state. Rendering failures degrade to a log line.
func (d *Dispatcher) RefreshForeground() {
	n := d.foregroundContent()
	if err := d.provider.Notify(n); err != nil {
		log.Printf("Unable to show foreground notification: %v", err)
	}
}

func (d *Dispatcher) foregroundContent() platform.Notification {
	cur := d.monitor.CurrentTask()
	if cur == nil {
		return platform.Notification{
			ID:      platform.ForegroundNotificationID,
			Title:   "Task Minder",
			Message: "No tasks to monitor",
		}
	}

	due := cur.Timestamp.Time().Add(d.monitor.SnoozeTime())
	return platform.Notification{
		ID:      platform.ForegroundNotificationID,
		Title:   models.DueLabel(due, d.monitor.Now()),
		Message: cur.Message,
		Buttons: []string{"Snooze", "Cancel"},
	}
}

// ShowExpiredAlert raises the high-priority alert notification for a task
// that just expired and records its ID for the peer process.
func (d *Dispatcher) ShowExpiredAlert(task models.Task) {
	n := platform.Notification{
		ID:           platform.AlertNotificationID,
		Title:        "Task due!",
		Message:      task.Message,
		HighPriority: true,
		Buttons:      []string{"Snooze", "Snooze more", "Cancel"},
	}
	if err := d.provider.Notify(n); err != nil {
		log.Printf("Unable to show alert notification: %v", err)
	}

	if d.settings != nil {
		if err := d.settings.SetExpiredTaskID(task.ID); err != nil {
			log.Printf("Unable to persist expired task id: %v", err)
		}
	}
}
