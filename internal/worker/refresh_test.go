package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/weather"
	"github.com/nimbusweather/nimbus/internal/worker"
)

// fakeRefresher refreshes a fixed set of locations, failing for ids in errs.
type fakeRefresher struct {
	mu        sync.Mutex
	ids       []string
	errs      map[string]error
	listErr   error
	refreshed []string
}

func newFakeRefresher(ids ...string) *fakeRefresher {
	return &fakeRefresher{ids: ids, errs: make(map[string]error)}
}

func (f *fakeRefresher) Locations(context.Context) ([]*weather.Location, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*weather.Location, 0, len(f.ids))
	for _, id := range f.ids {
		out = append(out, &weather.Location{ID: id})
	}
	return out, nil
}

func (f *fakeRefresher) Refresh(_ context.Context, id string) (*weather.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, id)
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return &weather.Location{ID: id}, nil
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.refreshed)
}

type fakeSwitches struct {
	disabled bool
}

func (s fakeSwitches) IsScheduledRefreshDisabled(context.Context) bool {
	return s.disabled
}

func newJob(r worker.Refresher, s worker.Switches) *worker.RefreshJob {
	return worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:    worker.RefreshConfig{Concurrency: 2, Timeout: time.Second},
		Logger:    zerolog.Nop(),
		Refresher: r,
		Switches:  s,
	})
}

func TestDefaultRefreshConfig(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()

	assert.Equal(t, time.Hour, cfg.Interval)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
}

func TestRefreshJob_Run(t *testing.T) {
	r := newFakeRefresher("a", "b", "c", "d")
	r.errs["b"] = errors.New("upstream down")
	r.errs["c"] = weather.ErrSuperseded
	job := newJob(r, nil)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Superseded)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "b", result.Errors[0].LocationID)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, r.refreshed)
}

func TestRefreshJob_Run_NoLocations(t *testing.T) {
	job := newJob(newFakeRefresher(), nil)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Successful)
}

func TestRefreshJob_Run_ListError(t *testing.T) {
	r := newFakeRefresher()
	r.listErr = errors.New("store unavailable")
	job := newJob(r, nil)

	_, err := job.Run(context.Background())
	assert.Error(t, err)
}

func TestRefreshJob_Run_Cancelled(t *testing.T) {
	r := newFakeRefresher("a", "b")
	job := newJob(r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := job.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 0, r.count())
}

func TestRefreshJob_RunScheduled(t *testing.T) {
	t.Run("runs when enabled", func(t *testing.T) {
		r := newFakeRefresher("a")
		job := newJob(r, fakeSwitches{})

		assert.True(t, job.RunScheduled(context.Background()))
		assert.Equal(t, 1, r.count())
	})

	t.Run("skips when disabled", func(t *testing.T) {
		r := newFakeRefresher("a")
		job := newJob(r, fakeSwitches{disabled: true})

		assert.False(t, job.RunScheduled(context.Background()))
		assert.Equal(t, 0, r.count())
		assert.Equal(t, int64(1), job.GetMetrics().SkippedRuns)
	})
}

func TestRefreshJob_RefreshLocation(t *testing.T) {
	r := newFakeRefresher("a")
	r.errs["missing"] = weather.ErrLocationNotFound
	job := newJob(r, nil)

	require.NoError(t, job.RefreshLocation(context.Background(), "a"))
	assert.ErrorIs(t, job.RefreshLocation(context.Background(), "missing"), weather.ErrLocationNotFound)
	assert.Equal(t, int64(2), job.GetMetrics().OnDemandRefreshes)
}

func TestRefreshJob_GetMetrics(t *testing.T) {
	r := newFakeRefresher("a", "b")
	r.errs["b"] = errors.New("boom")
	job := newJob(r, nil)

	// Initial metrics should be zero
	metrics := job.GetMetrics()
	assert.Equal(t, int64(0), metrics.TotalRuns)

	_, err := job.Run(context.Background())
	require.NoError(t, err)
	_, err = job.Run(context.Background())
	require.NoError(t, err)

	metrics = job.GetMetrics()
	assert.Equal(t, int64(2), metrics.TotalRuns)
	assert.Equal(t, int64(2), metrics.SuccessfulRefresh)
	assert.Equal(t, int64(2), metrics.FailedRefreshes)
	assert.False(t, metrics.LastRunAt.IsZero())
}

func TestRefreshJob_MetricsSnapshot(t *testing.T) {
	job := newJob(newFakeRefresher("a"), nil)
	_, err := job.Run(context.Background())
	require.NoError(t, err)

	snapshot := job.MetricsSnapshot()

	assert.Contains(t, snapshot, "total_runs")
	assert.Contains(t, snapshot, "successful_refreshes")
	assert.Contains(t, snapshot, "last_run_duration")
	assert.Equal(t, int64(1), snapshot["total_runs"])
}

func TestScheduler_RunsJob(t *testing.T) {
	r := newFakeRefresher("a")
	job := newJob(r, fakeSwitches{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := worker.NewScheduler(job, time.Hour, zerolog.Nop())
	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.Eventually(t, func() bool { return r.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}
