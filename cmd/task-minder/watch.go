package main

import (
	"context"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/borgmon/task-minder/pkg/alarm"
	"github.com/borgmon/task-minder/pkg/dispatch"
	"github.com/borgmon/task-minder/pkg/models"
	"github.com/borgmon/task-minder/pkg/monitor"
	"github.com/borgmon/task-minder/pkg/platform"
	"github.com/borgmon/task-minder/pkg/signal"
	"github.com/borgmon/task-minder/pkg/store"
)

// appHooks are the app-side monitor side effects: a snooze or cancel done
// here must reach the daemon's monitor too, or its alarm keeps ringing.
type appHooks struct {
	broadcaster *signal.Broadcaster
}

func (h appHooks) OnSnoozed(task models.Task, total time.Duration) {
	h.broadcaster.Send(signal.TargetService, models.Signal{Action: models.ActionUpdateTasks})
	h.broadcaster.Send(signal.TargetService, models.Signal{Action: models.ActionStopAlarm, TaskID: task.ID})
}

func (h appHooks) OnCancelled(task models.Task) {
	h.broadcaster.Send(signal.TargetService, models.Signal{Action: models.ActionCancel, TaskID: task.ID})
}

// cmdWatch runs the app process's own monitor loop. The daemon keeps its own
// Monitor; the two converge through the store, the flag file, and broadcasts.
func cmdWatch(cfg *models.Config) error {
	broadcaster := signal.NewBroadcaster(cfg.BrokerURL())
	if err := broadcaster.Connect(); err != nil {
		log.Printf("Broker connection pending: %v", err)
	}
	defer broadcaster.Close()

	settings, err := store.OpenSettings(cfg.SettingsPath())
	if err != nil {
		return err
	}

	taskStore := store.NewTaskStore(cfg.TasksPath())
	provider := platform.NewDesktopProvider()
	mon := monitor.New(taskStore, appHooks{broadcaster}, cfg.SnoozeShort(), cfg.SnoozeLong())
	trigger := alarm.NewTrigger(provider, cfg.AlarmsDir, cfg.RecordingsDir)
	dispatcher := dispatch.New(mon, trigger, provider, broadcaster, settings, signal.TargetService)

	if err := broadcaster.Subscribe(signal.TargetApp, dispatcher.HandleSignal); err != nil {
		log.Printf("Unable to subscribe to action channel: %v", err)
	}

	mon.Refresh()
	pickUpCancelledTask(mon, settings)
	dispatcher.RefreshForeground()
	mon.ConsumeForegroundStale()

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	log.Println("Watching tasks; Ctrl-C to stop")
	for {
		select {
		case <-ctx.Done():
			trigger.Stop()
			provider.CancelAll()
			return nil
		case <-ticker.C:
			if mon.ExpiredTask() == nil && mon.IsExpired() {
				if task := mon.HandleExpiredTask(); task != nil {
					dispatcher.ShowExpiredAlert(*task)
					trigger.Trigger(*task)
				}
			}
			if mon.ConsumeForegroundStale() {
				dispatcher.RefreshForeground()
			}
		}
	}
}

// pickUpCancelledTask applies a cancellation the daemon performed while this
// process wasn't running, then clears the handoff slot.
func pickUpCancelledTask(mon *monitor.Monitor, settings *store.SettingsStore) {
	id, ok := settings.CancelledTaskID()
	if !ok {
		return
	}

	if cur := mon.CurrentTask(); cur != nil && cur.ID == id {
		mon.Cancel()
	}
	if err := settings.ClearCancelledTaskID(); err != nil {
		log.Printf("Unable to clear cancelled-task slot: %v", err)
	}
}
