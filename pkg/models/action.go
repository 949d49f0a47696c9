package models

// Action names the cross-process broadcast messages exchanged between the
// app and the monitor daemon. Delivery is fire-and-forget; receivers must
// treat every action as idempotent.
type Action string

const (
	ActionStopAlarm          Action = "STOP_ALARM"
	ActionSnoozeA            Action = "SNOOZE_A"
	ActionSnoozeB            Action = "SNOOZE_B"
	ActionCancel             Action = "CANCEL"
	ActionUpdateTasks        Action = "UPDATE_TASKS"
	ActionRemoveTaskNotifications Action = "REMOVE_TASK_NOTIFICATIONS"
	ActionOpenApp            Action = "OPEN_APP"
	ActionRestartService     Action = "RESTART_SERVICE"
	ActionBootCompleted      Action = "BOOT_COMPLETED"
)

// Signal is one broadcast message: an action name plus a small flat payload.
type Signal struct {
	Action           Action `json:"action"`
	TaskID           string `json:"task_id,omitempty"`
	NotificationType string `json:"notification_type,omitempty"`
	Target           string `json:"target,omitempty"`
}

// NotificationTypeAlert marks signals originating from the high-priority
// alert notification (as opposed to the persistent foreground one).
const NotificationTypeAlert = "alert"
