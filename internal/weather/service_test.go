package weather_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// mockSource is a main source returning a one-day forecast.
type mockSource struct {
	id        string
	features  []weather.Feature
	calls     atomic.Int32
	err       error
	requested chan weather.Features

	// block makes the first call wait for its context to end.
	block   bool
	started chan struct{}

	params    map[string]string
	paramsErr error
}

func newMockSource(id string, features ...weather.Feature) *mockSource {
	return &mockSource{
		id:        id,
		features:  features,
		requested: make(chan weather.Features, 10),
		started:   make(chan struct{}, 10),
	}
}

func (m *mockSource) ID() string                          { return m.id }
func (m *mockSource) Name() string                        { return "Mock " + m.id }
func (m *mockSource) SupportedFeatures() []weather.Feature { return m.features }

func (m *mockSource) RequestWeather(ctx context.Context, _ *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	n := m.calls.Add(1)
	m.requested <- features
	m.started <- struct{}{}
	if m.block && n == 1 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := &weather.Wrapper{
		Current: &weather.Current{
			Temperature:      &weather.Temperature{Temperature: weather.Ptr(20.0)},
			RelativeHumidity: weather.Ptr(50.0),
		},
		Daily: []weather.Daily{{Date: day}},
		Hourly: []weather.Hourly{
			{Date: day.Add(13 * time.Hour), Pressure: weather.Ptr(1015.0)},
			{Date: day.Add(12 * time.Hour), Pressure: weather.Ptr(1013.0)},
		},
	}
	if features.Has(weather.FeatureAlert) {
		w.Alerts = []weather.Alert{}
	}
	return w, nil
}

type paramSource struct {
	*mockSource
}

func (p paramSource) NeedsLocationParameters(loc *weather.Location) bool {
	return loc.Parameter(p.id, "key") == ""
}

func (p paramSource) RequestLocationParameters(context.Context, *weather.Location) (map[string]string, error) {
	if p.paramsErr != nil {
		return nil, p.paramsErr
	}
	return p.params, nil
}

// mockSecondary provides air quality for the hours of the mock forecast.
type mockSecondary struct {
	id    string
	err   error
	calls atomic.Int32
}

func (m *mockSecondary) ID() string   { return m.id }
func (m *mockSecondary) Name() string { return "Mock " + m.id }
func (m *mockSecondary) SecondaryFeatures() []weather.Feature {
	return []weather.Feature{weather.FeatureAirQuality}
}

func (m *mockSecondary) RequestSecondaryWeather(context.Context, *weather.Location, weather.Features) (*weather.Wrapper, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return &weather.Wrapper{
		Current: &weather.Current{AirQuality: &airquality.AirQuality{PM25: weather.Ptr(12.0)}},
		Hourly: []weather.Hourly{
			{Date: day.Add(12 * time.Hour), AirQuality: &airquality.AirQuality{PM25: weather.Ptr(10.0)}},
			{Date: day.Add(13 * time.Hour), AirQuality: &airquality.AirQuality{PM25: weather.Ptr(20.0)}},
		},
	}, nil
}

// memoryRepo is a minimal repository storing copies of locations.
type memoryRepo struct {
	mu        sync.Mutex
	locations map[string]weather.Location
	saves     int
}

func newMemoryRepo(locs ...weather.Location) *memoryRepo {
	r := &memoryRepo{locations: make(map[string]weather.Location)}
	for _, l := range locs {
		r.locations[l.ID] = l
	}
	return r
}

func (r *memoryRepo) Get(_ context.Context, id string) (*weather.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locations[id]
	if !ok {
		return nil, weather.ErrLocationNotFound
	}
	return &l, nil
}

func (r *memoryRepo) List(context.Context) ([]*weather.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*weather.Location, 0, len(r.locations))
	for _, l := range r.locations {
		out = append(out, &l)
	}
	return out, nil
}

func (r *memoryRepo) Save(_ context.Context, loc *weather.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[loc.ID] = *loc
	r.saves++
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locations, id)
	return nil
}

// gatedRepo holds the first save until release is closed.
type gatedRepo struct {
	*memoryRepo
	once    sync.Once
	saving  chan struct{}
	release chan struct{}
}

func (r *gatedRepo) Save(ctx context.Context, loc *weather.Location) error {
	r.once.Do(func() {
		close(r.saving)
		<-r.release
	})
	return r.memoryRepo.Save(ctx, loc)
}

type mockGate struct {
	disabledSources  map[string]bool
	disabledFeatures map[string]bool
}

func (g mockGate) SourceEnabled(_ context.Context, id string) bool {
	return !g.disabledSources[id]
}

func (g mockGate) FeatureEnabled(_ context.Context, f string) bool {
	return !g.disabledFeatures[f]
}

func newService(t *testing.T, repo weather.Repository, sources ...interface {
	ID() string
	Name() string
}) *weather.Service {
	t.Helper()
	reg := weather.NewRegistry()
	for _, s := range sources {
		reg.Register(s)
	}
	return weather.NewService(weather.ServiceConfig{
		Registry:   reg,
		Repository: repo,
		Logger:     zerolog.Nop(),
	})
}

func TestService_CreateLocation(t *testing.T) {
	src := newMockSource("mock", weather.FeatureCurrent)
	sec := &mockSecondary{id: "aq"}
	svc := newService(t, newMemoryRepo(), src, sec)
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		loc, err := svc.CreateLocation(ctx, &weather.Location{
			Latitude:         52.37,
			Longitude:        4.89,
			TimeZone:         "Europe/Amsterdam",
			Source:           "mock",
			SecondarySources: map[weather.Feature]string{weather.FeatureAirQuality: "aq"},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, loc.ID)

		stored, err := svc.Locations(ctx)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	tests := []struct {
		name string
		loc  weather.Location
		want error
	}{
		{"latitude out of range", weather.Location{Latitude: 91, Source: "mock"}, weather.ErrInvalidCoordinates},
		{"longitude out of range", weather.Location{Longitude: -181, Source: "mock"}, weather.ErrInvalidCoordinates},
		{"unknown time zone", weather.Location{TimeZone: "Mars/Olympus", Source: "mock"}, weather.ErrInvalidLocation},
		{"unknown source", weather.Location{Source: "nope"}, weather.ErrSourceNotFound},
		{"unknown secondary", weather.Location{
			Source:           "mock",
			SecondarySources: map[weather.Feature]string{weather.FeaturePollen: "nope"},
		}, weather.ErrSourceNotFound},
		{"unsupported secondary feature", weather.Location{
			Source:           "mock",
			SecondarySources: map[weather.Feature]string{weather.FeaturePollen: "aq"},
		}, weather.ErrFeatureNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := tt.loc
			_, err := svc.CreateLocation(ctx, &loc)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_Refresh(t *testing.T) {
	src := newMockSource("mock", weather.FeatureCurrent, weather.FeatureAirQuality, weather.FeatureAlert)
	sec := &mockSecondary{id: "aq"}
	repo := newMemoryRepo(weather.Location{
		ID:               "loc-1",
		Source:           "mock",
		SecondarySources: map[weather.Feature]string{weather.FeatureAirQuality: "aq"},
	})
	svc := newService(t, repo, src, sec)

	loc, err := svc.Refresh(context.Background(), "loc-1")
	require.NoError(t, err)
	require.NotNil(t, loc.Weather)
	require.NotNil(t, loc.RefreshedAt)

	// AIR_QUALITY went to the secondary source only.
	features := <-src.requested
	assert.True(t, features.Has(weather.FeatureCurrent))
	assert.True(t, features.Has(weather.FeatureAlert))
	assert.False(t, features.Has(weather.FeatureAirQuality))
	assert.Equal(t, int32(1), sec.calls.Load())

	w := loc.Weather
	require.NotNil(t, w.Current.AirQuality)
	assert.Equal(t, 12.0, *w.Current.AirQuality.PM25)

	// Normalized and merged by hour.
	require.Len(t, w.Hourly, 2)
	assert.True(t, w.Hourly[0].Date.Before(w.Hourly[1].Date))
	assert.Equal(t, 10.0, *w.Hourly[0].AirQuality.PM25)

	// Completed from hourly.
	require.NotNil(t, w.Daily[0].AirQuality)
	assert.Equal(t, 15.0, *w.Daily[0].AirQuality.PM25)
	require.NotNil(t, w.Daily[0].Pressure)
	assert.Equal(t, 1015.0, *w.Daily[0].Pressure.Max)
	assert.NotNil(t, w.Current.DewPoint)

	// Explicitly empty alerts survive.
	assert.NotNil(t, w.Alerts)
	assert.Empty(t, w.Alerts)

	stored, err := repo.Get(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.NotNil(t, stored.Weather)
}

func TestService_Refresh_SecondaryFailureIsNotFatal(t *testing.T) {
	src := newMockSource("mock", weather.FeatureCurrent)
	sec := &mockSecondary{id: "aq", err: errors.New("boom")}
	repo := newMemoryRepo(weather.Location{
		ID:               "loc-1",
		Source:           "mock",
		SecondarySources: map[weather.Feature]string{weather.FeatureAirQuality: "aq"},
	})
	svc := newService(t, repo, src, sec)

	loc, err := svc.Refresh(context.Background(), "loc-1")
	require.NoError(t, err)
	require.NotNil(t, loc.Weather.Current)
	assert.Nil(t, loc.Weather.Current.AirQuality)
}

func TestService_Refresh_PrimaryFailureKeepsStoredWeather(t *testing.T) {
	previous := &weather.Wrapper{Daily: []weather.Daily{{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}}}
	refreshedAt := time.Now().Add(-time.Hour)

	src := newMockSource("mock")
	src.err = weather.ErrInvalidData
	repo := newMemoryRepo(weather.Location{ID: "loc-1", Source: "mock", Weather: previous, RefreshedAt: &refreshedAt})
	svc := newService(t, repo, src)

	_, err := svc.Refresh(context.Background(), "loc-1")
	require.ErrorIs(t, err, weather.ErrInvalidData)

	stored, err := repo.Get(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, previous, stored.Weather)
	assert.Equal(t, 0, repo.saves)
}

func TestService_Refresh_UnknownLocation(t *testing.T) {
	svc := newService(t, newMemoryRepo(), newMockSource("mock"))

	_, err := svc.Refresh(context.Background(), "missing")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestService_Refresh_LocationParameters(t *testing.T) {
	src := paramSource{newMockSource("keyed")}
	src.params = map[string]string{"key": "12345"}
	repo := newMemoryRepo(weather.Location{ID: "loc-1", Source: "keyed"})
	svc := newService(t, repo, src)

	loc, err := svc.Refresh(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, "12345", loc.Parameter("keyed", "key"))

	stored, err := repo.Get(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, "12345", stored.Parameter("keyed", "key"))
}

func TestService_Refresh_LocationParametersFailure(t *testing.T) {
	src := paramSource{newMockSource("keyed")}
	src.paramsErr = errors.New("lookup failed")
	svc := newService(t, newMemoryRepo(weather.Location{ID: "loc-1", Source: "keyed"}), src)

	_, err := svc.Refresh(context.Background(), "loc-1")
	require.ErrorIs(t, err, weather.ErrInvalidLocation)
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestService_Refresh_LocationParametersUpstreamFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"missing key", weather.ErrMissingAPIKey, weather.ErrMissingAPIKey},
		{"unauthorized", fmt.Errorf("geoposition: %w", weather.ErrUnauthorized), weather.ErrUnauthorized},
		{"rate limited", fmt.Errorf("geoposition: %w", weather.ErrRateLimited), weather.ErrRateLimited},
		{"request failed", fmt.Errorf("geoposition: %w", weather.ErrRequestFailed), weather.ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := paramSource{newMockSource("keyed")}
			src.paramsErr = tt.err
			svc := newService(t, newMemoryRepo(weather.Location{ID: "loc-1", Source: "keyed"}), src)

			_, err := svc.Refresh(context.Background(), "loc-1")
			require.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, weather.ErrInvalidLocation)
			assert.Equal(t, int32(0), src.calls.Load())
		})
	}
}

func TestService_Refresh_Gate(t *testing.T) {
	src := newMockSource("mock", weather.FeatureCurrent, weather.FeatureAlert)
	sec := &mockSecondary{id: "aq"}
	repo := newMemoryRepo(weather.Location{
		ID:               "loc-1",
		Source:           "mock",
		SecondarySources: map[weather.Feature]string{weather.FeatureAirQuality: "aq"},
	})
	reg := weather.NewRegistry()
	reg.Register(src)
	reg.Register(sec)

	svc := weather.NewService(weather.ServiceConfig{
		Registry:   reg,
		Repository: repo,
		Logger:     zerolog.Nop(),
		Gate: mockGate{
			disabledSources:  map[string]bool{"aq": true},
			disabledFeatures: map[string]bool{"ALERT": true},
		},
	})

	_, err := svc.Refresh(context.Background(), "loc-1")
	require.NoError(t, err)

	features := <-src.requested
	assert.True(t, features.Has(weather.FeatureCurrent))
	assert.False(t, features.Has(weather.FeatureAlert))
	assert.Equal(t, int32(0), sec.calls.Load())

	t.Run("disabled main source", func(t *testing.T) {
		svc := weather.NewService(weather.ServiceConfig{
			Registry:   reg,
			Repository: repo,
			Logger:     zerolog.Nop(),
			Gate:       mockGate{disabledSources: map[string]bool{"mock": true}},
		})
		_, err := svc.Refresh(context.Background(), "loc-1")
		assert.ErrorIs(t, err, weather.ErrSourceNotFound)
	})
}

func TestService_Refresh_Supersede(t *testing.T) {
	src := newMockSource("mock")
	src.block = true
	repo := newMemoryRepo(weather.Location{ID: "loc-1", Source: "mock"})
	svc := newService(t, repo, src)

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background(), "loc-1")
		firstErr <- err
	}()
	<-src.started

	loc, err := svc.Refresh(context.Background(), "loc-1")
	require.NoError(t, err)
	require.NotNil(t, loc.Weather)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, weather.ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first refresh was not cancelled")
	}
	assert.Equal(t, 1, repo.saves)
}

func TestService_Refresh_SupersedeWaitsForSave(t *testing.T) {
	src := newMockSource("mock")
	repo := &gatedRepo{
		memoryRepo: newMemoryRepo(weather.Location{ID: "loc-1", Source: "mock"}),
		saving:     make(chan struct{}),
		release:    make(chan struct{}),
	}
	svc := newService(t, repo, src)

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background(), "loc-1")
		firstErr <- err
	}()
	<-src.started
	<-repo.saving

	secondErr := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background(), "loc-1")
		secondErr <- err
	}()

	select {
	case <-src.started:
		t.Fatal("refresh began while an earlier one was saving")
	case <-time.After(50 * time.Millisecond):
	}

	close(repo.release)
	require.NoError(t, <-firstErr)
	require.NoError(t, <-secondErr)
	assert.Equal(t, 2, repo.saves)
}

func TestService_GetWeather(t *testing.T) {
	t.Run("fresh weather is served from the repository", func(t *testing.T) {
		now := time.Now()
		src := newMockSource("mock")
		repo := newMemoryRepo(weather.Location{
			ID:          "loc-1",
			Source:      "mock",
			Weather:     &weather.Wrapper{},
			RefreshedAt: &now,
		})
		svc := newService(t, repo, src)

		loc, err := svc.GetWeather(context.Background(), "loc-1")
		require.NoError(t, err)
		assert.NotNil(t, loc.Weather)
		assert.Equal(t, int32(0), src.calls.Load())
	})

	t.Run("expired weather is refreshed", func(t *testing.T) {
		old := time.Now().Add(-2 * time.Hour)
		src := newMockSource("mock")
		repo := newMemoryRepo(weather.Location{
			ID:          "loc-1",
			Source:      "mock",
			Weather:     &weather.Wrapper{},
			RefreshedAt: &old,
		})
		svc := newService(t, repo, src)

		loc, err := svc.GetWeather(context.Background(), "loc-1")
		require.NoError(t, err)
		assert.Len(t, loc.Weather.Daily, 1)
		assert.Equal(t, int32(1), src.calls.Load())
	})

	t.Run("stale weather is served when refresh fails", func(t *testing.T) {
		old := time.Now().Add(-2 * time.Hour)
		src := newMockSource("mock")
		src.err = weather.ErrRequestFailed
		repo := newMemoryRepo(weather.Location{
			ID:          "loc-1",
			Source:      "mock",
			Weather:     &weather.Wrapper{},
			RefreshedAt: &old,
		})
		svc := newService(t, repo, src)

		loc, err := svc.GetWeather(context.Background(), "loc-1")
		require.NoError(t, err)
		assert.NotNil(t, loc.Weather)
	})

	t.Run("too old weather is not served", func(t *testing.T) {
		old := time.Now().Add(-12 * time.Hour)
		src := newMockSource("mock")
		src.err = weather.ErrRateLimited
		repo := newMemoryRepo(weather.Location{
			ID:          "loc-1",
			Source:      "mock",
			Weather:     &weather.Wrapper{},
			RefreshedAt: &old,
		})
		svc := newService(t, repo, src)

		_, err := svc.GetWeather(context.Background(), "loc-1")
		assert.ErrorIs(t, err, weather.ErrRateLimited)
	})
}

func TestService_RefreshAll(t *testing.T) {
	src := newMockSource("mock")
	repo := newMemoryRepo(
		weather.Location{ID: "a", Source: "mock"},
		weather.Location{ID: "b", Source: "mock"},
		weather.Location{ID: "c", Source: "unknown"},
	)
	svc := newService(t, repo, src)

	n, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestRegistry(t *testing.T) {
	reg := weather.NewRegistry()
	reg.Register(newMockSource("zeta", weather.FeatureCurrent))
	reg.Register(&mockSecondary{id: "alpha"})

	_, err := reg.Source("zeta")
	require.NoError(t, err)
	_, err = reg.Source("alpha")
	assert.ErrorIs(t, err, weather.ErrSourceNotFound)
	_, err = reg.Secondary("alpha")
	require.NoError(t, err)

	infos := reg.Infos()
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].ID)
	assert.False(t, infos[0].Primary)
	assert.Equal(t, []weather.Feature{weather.FeatureAirQuality}, infos[0].SecondaryFeatures)
	assert.Equal(t, "zeta", infos[1].ID)
	assert.True(t, infos[1].Primary)
}

func TestService_LocationAndDelete(t *testing.T) {
	repo := newMemoryRepo(weather.Location{ID: "a", Source: "mock"})
	src := newMockSource("mock")
	svc := newService(t, repo, src)
	ctx := context.Background()

	loc, err := svc.Location(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, loc.Weather)
	assert.Zero(t, src.calls.Load())

	require.NoError(t, svc.DeleteLocation(ctx, "a"))
	_, err = svc.Location(ctx, "a")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}
