package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/config"
)

const reportTimeout = 2 * time.Minute

// Publisher publishes the daily stock-level report.
type Publisher interface {
	PublishDailyLevels(ctx context.Context, now time.Time) error
}

// Sweeper evicts idle operator sessions.
type Sweeper interface {
	Sweep(ttl time.Duration) int
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	publisher Publisher
	sweeper   Sweeper
	cfg       config.Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.Config, publisher Publisher, sweeper Sweeper, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Reporting.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		publisher: publisher,
		sweeper:   sweeper,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("report_schedule", s.cfg.Reporting.CronSchedule),
		zap.Duration("sweep_interval", s.cfg.Sessions.SweepInterval))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.publishDailyLevels); err != nil {
		return fmt.Errorf("schedule daily stock report: %w", err)
	}

	if _, err := s.cron.AddFunc("@every "+s.cfg.Sessions.SweepInterval.String(), s.sweepSessions); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publishDailyLevels() {
	s.logger.Info("publishing daily stock levels")
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if err := s.publisher.PublishDailyLevels(ctx, s.now()); err != nil {
		s.logger.Error("failed to publish daily stock levels", zap.Error(err))
		return
	}
	s.logger.Info("daily stock levels published successfully")
}

func (s *Scheduler) sweepSessions() {
	removed := s.sweeper.Sweep(s.cfg.Sessions.IdleTTL)
	s.logger.Debug("session sweep finished", zap.Int("removed", removed))
}
