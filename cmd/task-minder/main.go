// task-minder is the app-side command line: it edits the task store, imports
// calendars, and sends action broadcasts to the daemon. The `watch` command
// runs the app process's own monitor loop.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/borgmon/task-minder/pkg/models"
	"github.com/borgmon/task-minder/pkg/signal"
	"github.com/borgmon/task-minder/pkg/store"
)

const addTimeLayout = "2006-01-02 15:04"

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := store.NewConfigStore(defaultConfigPath()).Load()
	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "add":
		err = cmdAdd(cfg, args)
	case "list":
		err = cmdList(cfg)
	case "remove":
		err = cmdRemove(cfg, args)
	case "import":
		err = cmdImport(cfg, args)
	case "snooze":
		err = cmdSnooze(cfg, args)
	case "cancel":
		sendToService(cfg, models.Signal{Action: models.ActionCancel})
	case "stop-alarm":
		sendToService(cfg, models.Signal{Action: models.ActionStopAlarm})
	case "open":
		sendToService(cfg, models.Signal{Action: models.ActionOpenApp})
	case "watch":
		err = cmdWatch(cfg)
	case "status":
		err = cmdStatus(cfg)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: task-minder <command> [flags]

commands:
  add "message" -at "2006-01-02 15:04" [-alarm name] [-vibrate] [-keep]
  list                  show upcoming tasks
  remove <task-id>      delete a task
  import <path|url>     import iCal events as tasks
  snooze <a|b>          snooze the current alert
  cancel                cancel the current task
  stop-alarm            silence the alarm
  open                  cancel and foreground the app
  watch                 run the app-side monitor loop
  status                show daemon liveness and handoff slots`)
}

func cmdAdd(cfg *models.Config, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	at := fs.String("at", "", `due time, "2006-01-02 15:04" local`)
	alarmName := fs.String("alarm", "", "logical alarm sound name")
	vibrate := fs.Bool("vibrate", false, "vibrate on expiry")
	keep := fs.Bool("keep", false, "repeat alarm/vibration until acknowledged")

	// Message first, flags after: task-minder add "water plants" -at "..."
	if len(args) == 0 {
		return fmt.Errorf("add: message required")
	}
	message := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	due, err := time.ParseInLocation(addTimeLayout, *at, time.Local)
	if err != nil {
		return fmt.Errorf("add: invalid -at value %q, want %q", *at, addTimeLayout)
	}

	task := models.Task{
		ID:           uuid.New().String(),
		Message:      message,
		Timestamp:    models.LocalTime(due),
		AlarmName:    *alarmName,
		Vibrate:      *vibrate,
		KeepAlarming: *keep,
	}

	if err := store.NewTaskStore(cfg.TasksPath()).Add(task); err != nil {
		return err
	}

	notifyTasksChanged(cfg)
	fmt.Printf("Added %s (%s)\n", task.ID, models.DueLabel(due, time.Now()))
	return nil
}

func cmdList(cfg *models.Config) error {
	groups := store.NewTaskStore(cfg.TasksPath()).LoadActiveTasks(time.Now())
	for _, group := range groups {
		fmt.Println(group.Date)
		for _, task := range group.Tasks {
			fmt.Printf("  %s  %s  %s\n",
				task.Timestamp.Time().Format("15:04"), task.ID, task.Message)
		}
	}
	return nil
}

func cmdRemove(cfg *models.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("remove: task id required")
	}
	if err := store.NewTaskStore(cfg.TasksPath()).Remove(args[0]); err != nil {
		return err
	}
	notifyTasksChanged(cfg)
	return nil
}

func cmdImport(cfg *models.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("import: path or URL required")
	}

	tasks, err := store.ImportICal(args[0], time.Now())
	if err != nil {
		return err
	}

	taskStore := store.NewTaskStore(cfg.TasksPath())
	for _, task := range tasks {
		if err := taskStore.Add(task); err != nil {
			return err
		}
	}

	notifyTasksChanged(cfg)
	fmt.Printf("Imported %d tasks\n", len(tasks))
	return nil
}

func cmdSnooze(cfg *models.Config, args []string) error {
	action := models.ActionSnoozeA
	if len(args) > 0 {
		switch args[0] {
		case "a":
			action = models.ActionSnoozeA
		case "b":
			action = models.ActionSnoozeB
		default:
			return fmt.Errorf("snooze: want a or b, got %q", args[0])
		}
	}
	sendToService(cfg, models.Signal{Action: action})
	return nil
}

func cmdStatus(cfg *models.Config) error {
	heartbeat := signal.NewFlagFile(cfg.FlagsDir(), signal.FlagHeartbeat)
	if mod, ok := heartbeat.ModTime(); ok && time.Since(mod) < 2*time.Minute {
		fmt.Printf("daemon: alive (heartbeat %s ago)\n", time.Since(mod).Round(time.Second))
	} else {
		fmt.Println("daemon: not running (no recent heartbeat)")
	}

	settings, err := store.OpenSettings(cfg.SettingsPath())
	if err != nil {
		return err
	}
	if id, ok := settings.CancelledTaskID(); ok {
		fmt.Printf("cancelled task pending pickup: %s\n", id)
	}
	if id, ok := settings.ExpiredTaskID(); ok {
		fmt.Printf("last expired task: %s\n", id)
	}
	return nil
}

// notifyTasksChanged tells the daemon the store moved: the flag file is the
// level-triggered signal it polls for, the broadcast just makes it faster.
// Neither is required to succeed; the daemon's poll provides the retry.
func notifyTasksChanged(cfg *models.Config) {
	signal.NewFlagFile(cfg.FlagsDir(), signal.FlagTasksChanged).Raise()
	sendToService(cfg, models.Signal{Action: models.ActionUpdateTasks})
}

func sendToService(cfg *models.Config, sig models.Signal) {
	broadcaster := signal.NewBroadcaster(cfg.BrokerURL())
	if err := broadcaster.Connect(); err != nil {
		log.Printf("Daemon not reachable, dropping %s: %v", sig.Action, err)
		return
	}
	defer broadcaster.Close()
	broadcaster.Send(signal.TargetService, sig)
}

func defaultConfigPath() string {
	return filepath.Join(models.DefaultConfig().DataDir, "config.yaml")
}
