// task-minderd is the background monitor daemon: it polls the task store,
// raises notifications and alarms on expiry, and hosts the local broker the
// app process talks to.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/borgmon/task-minder/pkg/alarm"
	"github.com/borgmon/task-minder/pkg/dispatch"
	"github.com/borgmon/task-minder/pkg/models"
	"github.com/borgmon/task-minder/pkg/monitor"
	"github.com/borgmon/task-minder/pkg/platform"
	"github.com/borgmon/task-minder/pkg/service"
	signalchan "github.com/borgmon/task-minder/pkg/signal"
	"github.com/borgmon/task-minder/pkg/store"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the config file")
	autostartMode := flag.String("autostart", "", "set to on or off to (de)register the daemon as a login item and exit")
	flag.Parse()

	configStore := store.NewConfigStore(*configPath)
	cfg := configStore.Load()

	if *autostartMode != "" {
		handleAutostart(*autostartMode, cfg, configStore)
		return
	}

	if cfg.AutoStart {
		if err := service.SetupAutostart(true); err != nil {
			log.Printf("Warning: failed to setup autostart: %v", err)
		}
	}

	broker, err := signalchan.StartEmbeddedServer(cfg.BrokerPort)
	if err != nil {
		log.Fatalf("Unable to start broker: %v", err)
	}
	defer broker.Shutdown()

	settings, err := store.OpenSettings(cfg.SettingsPath())
	if err != nil {
		log.Fatalf("Unable to open settings store: %v", err)
	}

	taskStore := store.NewTaskStore(cfg.TasksPath())
	provider := platform.NewDesktopProvider()

	broadcaster := signalchan.NewBroadcaster(cfg.BrokerURL())
	if err := broadcaster.Connect(); err != nil {
		log.Printf("Broker connection pending: %v", err)
	}
	defer broadcaster.Close()

	mon := monitor.New(taskStore, monitor.NopHooks{}, cfg.SnoozeShort(), cfg.SnoozeLong())
	trigger := alarm.NewTrigger(provider, cfg.AlarmsDir, cfg.RecordingsDir)
	dispatcher := dispatch.New(mon, trigger, provider, broadcaster, settings, signalchan.TargetApp)
	dispatcher.OpenApp = func() {
		// The daemon can't foreground a UI itself; tell a running app-side
		// watcher to do it.
		broadcaster.Send(signalchan.TargetApp, models.Signal{Action: models.ActionOpenApp})
	}

	svc := service.New(cfg, mon, dispatcher, trigger, provider, broadcaster)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("task-minderd starting (store %s, broker %s)", cfg.TasksPath(), cfg.BrokerURL())
	if err := svc.Run(ctx); err != nil {
		log.Fatal(err)
	}
}

func handleAutostart(mode string, cfg *models.Config, configStore *store.ConfigStore) {
	enable := mode == "on"
	if !enable && mode != "off" {
		log.Fatalf("invalid -autostart value %q, want on or off", mode)
	}

	if err := service.SetupAutostart(enable); err != nil {
		log.Fatalf("Unable to update autostart: %v", err)
	}

	cfg.AutoStart = enable
	if err := configStore.Save(cfg); err != nil {
		log.Printf("Unable to save config: %v", err)
	}
}

func defaultConfigPath() string {
	return filepath.Join(models.DefaultConfig().DataDir, "config.yaml")
}
