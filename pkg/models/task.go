package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateKeyLayout is the store's group key format.
const DateKeyLayout = "2006-01-02"

// TimestampLayout is the naive local date-time format used in the task store.
const TimestampLayout = "2006-01-02T15:04:05"

// StartTaskID is the ID of the synthetic task shown when the store is empty.
const StartTaskID = "start-task"

// Task is a persisted, timestamped reminder.
type Task struct {
	ID           string    `json:"task_id"`
	Message      string    `json:"message"`
	Timestamp    LocalTime `json:"timestamp"`
	AlarmName    string    `json:"alarm_name,omitempty"`
	Vibrate      bool      `json:"vibrate"`
	KeepAlarming bool      `json:"keep_alarming"`
	Expired      bool      `json:"expired"`
}

// DateKey returns the store group key for the task's scheduled date.
func (t Task) DateKey() string {
	return t.Timestamp.Time().Format(DateKeyLayout)
}

// TaskGroup is one calendar date's worth of tasks, sorted by timestamp.
type TaskGroup struct {
	Date  string
	Tasks []Task
}

// StartTask fabricates the sentinel shown when no upcoming tasks exist.
// It is never persisted back to the store.
func StartTask(now time.Time) Task {
	return Task{
		ID:        StartTaskID,
		Message:   "No upcoming tasks!",
		Timestamp: LocalTime(now.Add(-time.Minute)),
		Expired:   true,
	}
}

// LocalTime is a naive local date-time. It marshals without a zone suffix so
// the store file stays portable across machines in the same locale.
type LocalTime time.Time

func (lt LocalTime) Time() time.Time {
	return time.Time(lt)
}

func (lt LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(lt).Format(TimestampLayout))
}

func (lt *LocalTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// Prefer the naive layout; tolerate RFC3339 from hand-edited files.
	if t, err := time.ParseInLocation(TimestampLayout, raw, time.Local); err == nil {
		*lt = LocalTime(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("unable to parse timestamp %q", raw)
	}
	*lt = LocalTime(t.In(time.Local))
	return nil
}

// DueLabel formats a due time relative to now: "Today @ 15:04",
// "Tomorrow @ 15:04", or "Jan 02 @ 15:04".
func DueLabel(due, now time.Time) string {
	clock := due.Format("15:04")
	today := now.Format(DateKeyLayout)
	switch due.Format(DateKeyLayout) {
	case today:
		return "Today @ " + clock
	case now.AddDate(0, 0, 1).Format(DateKeyLayout):
		return "Tomorrow @ " + clock
	default:
		return due.Format("Jan 02") + " @ " + clock
	}
}
