package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/config"
	"github.com/meyvali/backoffice/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// Publisher publishes the report of the current day.
type Publisher interface {
	PublishToday(ctx context.Context, loc *time.Location) (models.DailyReport, error)
}

// Scheduler runs the nightly daily report job.
type Scheduler struct {
	cron      *cron.Cron
	publisher Publisher
	schedule  string
	location  *time.Location
	logger    *zap.Logger
}

// NewScheduler creates a scheduler firing on cfg.CronSchedule in cfg.Timezone.
func NewScheduler(cfg config.ReportingConfig, publisher Publisher, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	if _, err := cron.ParseStandard(cfg.CronSchedule); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", cfg.CronSchedule, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		publisher: publisher,
		schedule:  cfg.CronSchedule,
		location:  loc,
		logger:    logger,
	}, nil
}

// Start registers the report job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.publishDailyReport); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}

	s.logger.Info("starting scheduler",
		zap.String("schedule", s.schedule),
		zap.String("timezone", s.location.String()),
	)
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publishDailyReport() {
	s.logger.Info("generating daily report")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.publisher.PublishToday(ctx, s.location)
	if err != nil {
		s.logger.Error("daily report finished with errors", zap.String("date", report.Date), zap.Error(err))
		return
	}
	s.logger.Info("daily report sent successfully", zap.String("date", report.Date))
}
