package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Scheduler runs the refresh job periodically.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       *RefreshJob
	interval  time.Duration
	logger    zerolog.Logger
}

// NewScheduler creates a scheduler running job every interval. The first
// run starts when the scheduler starts.
func NewScheduler(job *RefreshJob, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultRefreshConfig().Interval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		job:       job,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the refresh and starts the underlying scheduler. Runs
// stop being scheduled once ctx is done; a run in progress sees ctx
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		if ctx.Err() != nil {
			return
		}
		s.job.RunScheduled(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling refresh: %w", err)
	}

	s.logger.Info().Dur("interval", s.interval).Msg("refresh scheduler started")
	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future runs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// IsRunning reports whether the scheduler has been started and not stopped.
func (s *Scheduler) IsRunning() bool {
	return s.scheduler.IsRunning()
}
