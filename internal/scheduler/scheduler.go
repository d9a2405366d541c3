package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/phrazzld/bandpath/internal/config"
)

// Scheduler triggers a DailyEvaluator once a day at the configured UTC time.
type Scheduler struct {
	cron   *gocron.Scheduler
	daily  *DailyEvaluator
	now    func() time.Time
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the daily job. It does not start it.
func New(daily *DailyEvaluator, cfg config.SchedulerConfig, log *slog.Logger) (*Scheduler, error) {
	if daily == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("daily evaluator cannot be nil for Scheduler")
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   gocron.NewScheduler(time.UTC),
		daily:  daily,
		now:    time.Now,
		logger: log.With(slog.String("component", "scheduler")),
		ctx:    ctx,
		cancel: cancel,
	}
	// A run that overlaps the next trigger is skipped, not queued.
	s.cron.SingletonModeAll()

	if _, err := s.cron.Every(1).Day().At(cfg.DailyAt).Do(s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to schedule daily evaluation at %q: %w", cfg.DailyAt, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	asOf := s.now().UTC()
	if _, err := s.daily.RunOnce(s.ctx, asOf); err != nil {
		s.logger.Error("scheduled evaluation incomplete", slog.String("error", err.Error()))
	}
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.StartAsync()
	if _, next := s.cron.NextRun(); !next.IsZero() {
		s.logger.Info("scheduler started", slog.Time("next_run", next))
	}
}

// Stop cancels any run in progress and stops the schedule.
func (s *Scheduler) Stop() {
	s.cancel()
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}
