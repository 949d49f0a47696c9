package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/borgmon/task-minder/pkg/models"
)

// TaskStore reads and writes the persisted task collection: a JSON mapping
// from date key ("YYYY-MM-DD") to the tasks scheduled on that date. The file
// is the sole durable owner of tasks; monitors only hold rebuildable views.
type TaskStore struct {
	path string
}

func NewTaskStore(path string) *TaskStore {
	return &TaskStore{path: path}
}

// LoadActiveTasks builds the active view of the store: groups dated today or
// later, tasks sorted by timestamp within each group, groups sorted by their
// first task's timestamp. Store errors are logged and treated as "no tasks";
// a malformed group is logged and skipped without aborting the read. When
// nothing remains, a single synthetic group holding the start task is
// returned so callers always have something to show.
func (ts *TaskStore) LoadActiveTasks(now time.Time) []models.TaskGroup {
	raw := ts.loadRaw()

	today := now.Format(models.DateKeyLayout)
	groups := make([]models.TaskGroup, 0, len(raw))

	for dateKey, records := range raw {
		if _, err := time.ParseInLocation(models.DateKeyLayout, dateKey, time.Local); err != nil {
			log.Printf("Skipping group with invalid date key %q", dateKey)
			continue
		}
		if dateKey < today {
			continue
		}

		var tasks []models.Task
		if err := json.Unmarshal(records, &tasks); err != nil {
			log.Printf("Skipping malformed task group %q: %v", dateKey, err)
			continue
		}
		if len(tasks) == 0 {
			continue
		}

		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Timestamp.Time().Before(tasks[j].Timestamp.Time())
		})
		groups = append(groups, models.TaskGroup{Date: dateKey, Tasks: tasks})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Tasks[0].Timestamp.Time().Before(groups[j].Tasks[0].Timestamp.Time())
	})

	if len(groups) == 0 {
		return []models.TaskGroup{{
			Date:  today,
			Tasks: []models.Task{models.StartTask(now)},
		}}
	}

	return groups
}

// loadRaw reads the store file into per-group raw JSON. Any read or top-level
// decode failure degrades to an empty mapping; the monitor loop must keep
// running on a corrupt or locked file.
func (ts *TaskStore) loadRaw() map[string]json.RawMessage {
	data, err := os.ReadFile(ts.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Unable to read task store %s: %v", ts.path, err)
		}
		return map[string]json.RawMessage{}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Task store %s is corrupt, treating as empty: %v", ts.path, err)
		return map[string]json.RawMessage{}
	}
	return raw
}

// LoadAll decodes every well-formed group in the store, past dates included.
// Used by the editing flow, which must not drop history on save.
func (ts *TaskStore) LoadAll() map[string][]models.Task {
	raw := ts.loadRaw()
	all := make(map[string][]models.Task, len(raw))
	for dateKey, records := range raw {
		var tasks []models.Task
		if err := json.Unmarshal(records, &tasks); err != nil {
			log.Printf("Skipping malformed task group %q: %v", dateKey, err)
			continue
		}
		all[dateKey] = tasks
	}
	return all
}

// Save writes the full mapping back atomically (temp file + rename).
func (ts *TaskStore) Save(all map[string][]models.Task) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(ts.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp := ts.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write task store: %w", err)
	}
	if err := os.Rename(tmp, ts.path); err != nil {
		return fmt.Errorf("replace task store: %w", err)
	}
	return nil
}

// Add appends a task to its date group, keeping the group ordered.
func (ts *TaskStore) Add(task models.Task) error {
	all := ts.LoadAll()
	key := task.DateKey()
	group := append(all[key], task)
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Timestamp.Time().Before(group[j].Timestamp.Time())
	})
	all[key] = group
	return ts.Save(all)
}

// Remove deletes the task with the given ID. Removing an unknown ID is a
// no-op; the caller may have raced another editor.
func (ts *TaskStore) Remove(taskID string) error {
	all := ts.LoadAll()
	for key, group := range all {
		for i, task := range group {
			if task.ID != taskID {
				continue
			}
			group = append(group[:i], group[i+1:]...)
			if len(group) == 0 {
				delete(all, key)
			} else {
				all[key] = group
			}
			return ts.Save(all)
		}
	}
	log.Printf("Remove: task %s not found", taskID)
	return nil
}
