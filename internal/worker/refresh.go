package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/weather"
)

// Refresher lists and refreshes stored locations. *weather.Service
// implements it.
type Refresher interface {
	Locations(ctx context.Context) ([]*weather.Location, error)
	Refresh(ctx context.Context, id string) (*weather.Location, error)
}

// Switches reports runtime switches that pause the worker. Optional.
type Switches interface {
	IsScheduledRefreshDisabled(ctx context.Context) bool
}

// RefreshJob refreshes stored locations with a bounded pool of workers.
type RefreshJob struct {
	config    RefreshConfig
	logger    zerolog.Logger
	refresher Refresher
	switches  Switches

	// Metrics
	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns         int64
	SkippedRuns       int64
	SuccessfulRefresh int64
	FailedRefreshes   int64
	SupersededRefresh int64
	OnDemandRefreshes int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config    RefreshConfig
	Logger    zerolog.Logger
	Refresher Refresher
	Switches  Switches
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:    cfg.Config.withDefaults(),
		logger:    cfg.Logger,
		refresher: cfg.Refresher,
		switches:  cfg.Switches,
		metrics:   &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Total      int
	Successful int
	Failed     int

	// Superseded counts refreshes cancelled by a newer refresh of the same
	// location. They are neither successes nor failures.
	Superseded int

	Errors []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	LocationID string
	Error      string
}

// Run refreshes every stored location.
func (j *RefreshJob) Run(ctx context.Context) (*RefreshResult, error) {
	startTime := time.Now()

	locations, err := j.refresher.Locations(ctx)
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{
		StartTime: startTime,
		Total:     len(locations),
	}

	j.logger.Info().
		Int("locations", result.Total).
		Int("concurrency", j.config.Concurrency).
		Msg("starting weather refresh job")

	// Create work channels
	ids := make(chan string, len(locations))
	results := make(chan locationResult, len(locations))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, ids, results)
		}()
	}

	for _, loc := range locations {
		ids <- loc.ID
	}
	close(ids)

	// Wait for workers to complete
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results
	for lr := range results {
		switch {
		case lr.err == nil:
			result.Successful++
		case errors.Is(lr.err, weather.ErrSuperseded):
			result.Superseded++
		default:
			result.Failed++
			result.Errors = append(result.Errors, RefreshError{
				LocationID: lr.id,
				Error:      lr.err.Error(),
			})
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("superseded", result.Superseded).
		Msg("weather refresh job completed")

	return result, ctx.Err()
}

// RunScheduled runs the job unless scheduled refreshes are switched off.
// It reports whether the job ran.
func (j *RefreshJob) RunScheduled(ctx context.Context) bool {
	if j.switches != nil && j.switches.IsScheduledRefreshDisabled(ctx) {
		j.metrics.mu.Lock()
		j.metrics.SkippedRuns++
		j.metrics.mu.Unlock()

		j.logger.Info().Msg("scheduled refresh disabled, skipping run")
		return false
	}

	if _, err := j.Run(ctx); err != nil {
		j.logger.Error().Err(err).Msg("scheduled refresh failed")
	}
	return true
}

// RefreshLocation refreshes a single location on demand.
func (j *RefreshJob) RefreshLocation(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	j.metrics.mu.Lock()
	j.metrics.OnDemandRefreshes++
	j.metrics.mu.Unlock()

	_, err := j.refresher.Refresh(ctx, id)
	return err
}

type locationResult struct {
	id  string
	err error
}

func (j *RefreshJob) refreshWorker(ctx context.Context, ids <-chan string, results chan<- locationResult) {
	for id := range ids {
		if ctx.Err() != nil {
			results <- locationResult{id: id, err: ctx.Err()}
			continue
		}

		locCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
		_, err := j.refresher.Refresh(locCtx, id)
		cancel()

		results <- locationResult{id: id, err: err}
	}
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.SupersededRefresh += int64(result.Superseded)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:         j.metrics.TotalRuns,
		SkippedRuns:       j.metrics.SkippedRuns,
		SuccessfulRefresh: j.metrics.SuccessfulRefresh,
		FailedRefreshes:   j.metrics.FailedRefreshes,
		SupersededRefresh: j.metrics.SupersededRefresh,
		OnDemandRefreshes: j.metrics.OnDemandRefreshes,
		LastRunAt:         j.metrics.LastRunAt,
		LastRunDuration:   j.metrics.LastRunDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":           m.TotalRuns,
		"skipped_runs":         m.SkippedRuns,
		"successful_refreshes": m.SuccessfulRefresh,
		"failed_refreshes":     m.FailedRefreshes,
		"superseded_refreshes": m.SupersededRefresh,
		"on_demand_refreshes":  m.OnDemandRefreshes,
		"last_run_at":          m.LastRunAt,
		"last_run_duration":    m.LastRunDuration.String(),
		"total_duration":       m.TotalDuration.String(),
	}
}
