// Package service runs the daemon's poll loop: a single-threaded cooperative
// cycle that detects task expiry, reacts to the tasks-changed flag, and
// drives the notification and alarm side effects.
package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/borgmon/task-minder/pkg/alarm"
	"github.com/borgmon/task-minder/pkg/dispatch"
	"github.com/borgmon/task-minder/pkg/models"
	"github.com/borgmon/task-minder/pkg/monitor"
	"github.com/borgmon/task-minder/pkg/platform"
	"github.com/borgmon/task-minder/pkg/signal"
)

// Service owns the daemon-side wiring around one Monitor instance.
type Service struct {
	cfg         *models.Config
	monitor     *monitor.Monitor
	dispatcher  *dispatch.Dispatcher
	trigger     *alarm.Trigger
	provider    platform.Provider
	broadcaster *signal.Broadcaster

	tasksChanged *signal.FlagFile
	heartbeat    *signal.FlagFile
	cron         *cron.Cron
}

func New(
	cfg *models.Config,
	mon *monitor.Monitor,
	disp *dispatch.Dispatcher,
	trigger *alarm.Trigger,
	provider platform.Provider,
	broadcaster *signal.Broadcaster,
) *Service {
	return &Service{
		cfg:          cfg,
		monitor:      mon,
		dispatcher:   disp,
		trigger:      trigger,
		provider:     provider,
		broadcaster:  broadcaster,
		tasksChanged: signal.NewFlagFile(cfg.FlagsDir(), signal.FlagTasksChanged),
		heartbeat:    signal.NewFlagFile(cfg.FlagsDir(), signal.FlagHeartbeat),
		cron:         cron.New(cron.WithSeconds()),
	}
}

// Run executes the poll loop until the context is cancelled. No error inside
// the loop is fatal; the service is built to run unattended indefinitely.
func (s *Service) Run(ctx context.Context) error {
	if err := s.broadcaster.Subscribe(signal.TargetService, s.dispatcher.HandleSignal); err != nil {
		log.Printf("Unable to subscribe to action channel: %v", err)
	}

	// Heartbeat every minute so the app can tell the daemon is alive, and a
	// midnight refresh so yesterday's groups fall out without an edit.
	if _, err := s.cron.AddFunc("0 * * * * *", func() { s.heartbeat.Raise() }); err != nil {
		log.Printf("Unable to schedule heartbeat: %v", err)
	}
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.monitor.Refresh); err != nil {
		log.Printf("Unable to schedule midnight rollover: %v", err)
	}
	s.cron.Start()
	s.heartbeat.Raise()

	s.monitor.Refresh()
	s.dispatcher.RefreshForeground()
	s.monitor.ConsumeForegroundStale()

	cadence := s.cfg.RefreshCheckCadence
	if cadence < 1 {
		cadence = 1
	}

	ticker := time.NewTicker(s.cfg.PollInterval())
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case <-ticker.C:
			tick++
			s.poll(tick, cadence)
		}
	}
}

// poll is one loop iteration: pick up the tasks-changed flag on its cadence,
// surface a newly-expired task exactly once, and re-render the foreground
// notification when state moved.
func (s *Service) poll(tick, cadence int) {
	if tick%cadence == 0 && s.tasksChanged.Consume() {
		log.Println("Tasks-changed flag seen, refreshing")
		s.monitor.Refresh()
	}

	if s.monitor.ExpiredTask() == nil && s.monitor.IsExpired() {
		if task := s.monitor.HandleExpiredTask(); task != nil {
			s.dispatcher.ShowExpiredAlert(*task)
			s.trigger.Trigger(*task)
		}
	}

	if s.monitor.ConsumeForegroundStale() {
		s.dispatcher.RefreshForeground()
	}
}

func (s *Service) shutdown() {
	log.Println("Service stopping")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.trigger.Stop()
	s.provider.CancelAll()
}
