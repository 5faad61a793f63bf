package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Repository stores locations and their last good weather.
type Repository interface {
	// Get returns ErrLocationNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Location, error)
	List(ctx context.Context) ([]*Location, error)
	Save(ctx context.Context, loc *Location) error
	Delete(ctx context.Context, id string) error
}

// Gate switches sources and features off at runtime.
type Gate interface {
	SourceEnabled(ctx context.Context, id string) bool
	FeatureEnabled(ctx context.Context, feature string) bool
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	Registry   *Registry
	Repository Repository

	// Gate is optional; without it every source and feature is enabled.
	Gate Gate

	Logger zerolog.Logger

	// CacheTTL is how long stored weather is served without refreshing
	// (default: 30 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stored weather when a refresh fails
	// (default: 6 hours).
	StaleIfErrorTTL time.Duration

	// RefreshTimeout bounds one refresh, all sources included
	// (default: 60 seconds).
	RefreshTimeout time.Duration
}

// Service assembles weather for stored locations from the registered
// sources and keeps the repository up to date.
type Service struct {
	registry        *Registry
	repo            Repository
	gate            Gate
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	refreshTimeout  time.Duration

	mu       sync.Mutex
	inflight map[string]*refreshCall
}

type refreshCall struct {
	cancel context.CancelFunc
}

// ErrSuperseded is returned by a refresh cancelled by a newer refresh of the
// same location. Its result is discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	if cfg.StaleIfErrorTTL == 0 {
		cfg.StaleIfErrorTTL = 6 * time.Hour
	}
	if cfg.RefreshTimeout == 0 {
		cfg.RefreshTimeout = 60 * time.Second
	}

	return &Service{
		registry:        cfg.Registry,
		repo:            cfg.Repository,
		gate:            cfg.Gate,
		logger:          cfg.Logger,
		cacheTTL:        cfg.CacheTTL,
		staleIfErrorTTL: cfg.StaleIfErrorTTL,
		refreshTimeout:  cfg.RefreshTimeout,
		inflight:        make(map[string]*refreshCall),
	}
}

// Registry returns the source registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Locations lists the stored locations.
func (s *Service) Locations(ctx context.Context) ([]*Location, error) {
	return s.repo.List(ctx)
}

// CreateLocation validates and stores a new location. The id is generated.
func (s *Service) CreateLocation(ctx context.Context, loc *Location) (*Location, error) {
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return nil, ErrInvalidCoordinates
	}
	if loc.TimeZone != "" {
		if _, err := time.LoadLocation(loc.TimeZone); err != nil {
			return nil, fmt.Errorf("%w: unknown time zone %q", ErrInvalidLocation, loc.TimeZone)
		}
	}
	main, err := s.registry.Source(loc.Source)
	if err != nil {
		return nil, err
	}
	for feature, id := range loc.SecondarySources {
		if id == main.ID() {
			continue
		}
		sec, err := s.registry.Secondary(id)
		if err != nil {
			return nil, err
		}
		if !NewFeatures(sec.SecondaryFeatures()...).Has(feature) {
			return nil, fmt.Errorf("%w: %s does not provide %s", ErrFeatureNotSupported, id, feature)
		}
	}

	loc.ID = uuid.NewString()
	loc.Weather = nil
	loc.RefreshedAt = nil
	if err := s.repo.Save(ctx, loc); err != nil {
		return nil, fmt.Errorf("saving location: %w", err)
	}

	s.logger.Info().
		Str("location_id", loc.ID).
		Str("source", loc.Source).
		Float64("lat", loc.Latitude).
		Float64("lon", loc.Longitude).
		Msg("location created")

	return loc, nil
}

// Location returns a stored location and its last weather without
// refreshing it.
func (s *Service) Location(ctx context.Context, id string) (*Location, error) {
	return s.repo.Get(ctx, id)
}

// DeleteLocation removes a stored location.
func (s *Service) DeleteLocation(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("location_id", id).Msg("location deleted")
	return nil
}

// GetWeather returns a location with its weather. Stored weather younger
// than CacheTTL is returned as is; otherwise the location is refreshed. When
// the refresh fails, stored weather younger than StaleIfErrorTTL is served.
func (s *Service) GetWeather(ctx context.Context, id string) (*Location, error) {
	loc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if loc.Weather != nil && loc.RefreshedAt != nil && now.Before(loc.RefreshedAt.Add(s.cacheTTL)) {
		return loc, nil
	}

	refreshed, err := s.Refresh(ctx, id)
	if err == nil {
		return refreshed, nil
	}

	if loc.Weather != nil && loc.RefreshedAt != nil && now.Before(loc.RefreshedAt.Add(s.staleIfErrorTTL)) {
		s.logger.Warn().
			Err(err).
			Str("location_id", id).
			Time("refreshed_at", *loc.RefreshedAt).
			Msg("serving stale weather due to refresh error")
		return loc, nil
	}
	return nil, err
}

// Refresh fetches fresh weather for a location and persists it. A newer
// refresh of the same location cancels this one. Any failure leaves the
// stored weather untouched.
func (s *Service) Refresh(ctx context.Context, id string) (*Location, error) {
	ctx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	call := s.begin(id, cancel)
	defer s.end(id, call)

	loc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With().Str("location_id", id).Str("source", loc.Source).Logger()
	start := time.Now()

	w, err := s.assemble(ctx, loc, logger)
	if err != nil {
		if !s.current(id, call) {
			return nil, ErrSuperseded
		}
		logger.Error().Err(err).Msg("weather refresh failed")
		return nil, err
	}

	now := time.Now()
	loc.Weather = w
	loc.RefreshedAt = &now
	if err := s.commit(ctx, id, call, loc); err != nil {
		return nil, err
	}

	logger.Info().
		Int("daily", len(w.Daily)).
		Int("hourly", len(w.Hourly)).
		Int("minutely", len(w.Minutely)).
		Dur("duration", time.Since(start)).
		Msg("weather refreshed")

	return loc, nil
}

// RefreshAll refreshes every stored location sequentially and returns the
// number of successful refreshes.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	locations, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing locations: %w", err)
	}

	refreshed := 0
	for _, loc := range locations {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if _, err := s.Refresh(ctx, loc.ID); err != nil {
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *Service) begin(id string, cancel context.CancelFunc) *refreshCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.inflight[id]; ok {
		s.logger.Debug().Str("location_id", id).Msg("superseding in-flight refresh")
		prev.cancel()
	}
	call := &refreshCall{cancel: cancel}
	s.inflight[id] = call
	return call
}

func (s *Service) end(id string, call *refreshCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[id] == call {
		delete(s.inflight, id)
	}
}

// commit saves loc only while call is the latest refresh of id. The lock is
// held across the save so a newer refresh cannot begin in between.
func (s *Service) commit(ctx context.Context, id string, call *refreshCall, loc *Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight[id] != call {
		return ErrSuperseded
	}
	if err := s.repo.Save(ctx, loc); err != nil {
		return fmt.Errorf("saving weather: %w", err)
	}
	return nil
}

func (s *Service) current(id string, call *refreshCall) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[id] == call
}

func (s *Service) sourceEnabled(ctx context.Context, id string) bool {
	return s.gate == nil || s.gate.SourceEnabled(ctx, id)
}

func (s *Service) enabledFeatures(ctx context.Context) Features {
	out := make(Features)
	for _, f := range AllFeatures() {
		if s.gate == nil || s.gate.FeatureEnabled(ctx, string(f)) {
			out[f] = struct{}{}
		}
	}
	return out
}

// assemble requests the main source and every secondary source, then merges
// and completes the result.
func (s *Service) assemble(ctx context.Context, loc *Location, logger zerolog.Logger) (*Wrapper, error) {
	main, err := s.registry.Source(loc.Source)
	if err != nil {
		return nil, err
	}
	if !s.sourceEnabled(ctx, main.ID()) {
		return nil, fmt.Errorf("%w: %s is disabled", ErrSourceNotFound, main.ID())
	}

	if err := s.resolveParameters(ctx, main, loc); err != nil {
		return nil, err
	}

	enabled := s.enabledFeatures(ctx)
	mainFeatures, delegated := s.plan(ctx, loc, main, enabled, logger)

	w, err := main.RequestWeather(ctx, loc, mainFeatures)
	if err != nil {
		return nil, err
	}

	// Parameters are resolved before the fan-out so loc is only read
	// concurrently.
	ready := delegated[:0]
	for _, d := range delegated {
		if err := s.resolveParameters(ctx, d.source, loc); err != nil {
			logger.Warn().Err(err).Str("secondary", d.source.ID()).Msg("secondary location parameters unavailable")
			continue
		}
		ready = append(ready, d)
	}
	delegated = ready

	tz := loc.TZ()
	results := make([]*Wrapper, len(delegated))
	var g errgroup.Group
	for i, d := range delegated {
		g.Go(func() error {
			sw, err := d.source.RequestSecondaryWeather(ctx, loc, d.features)
			if err != nil {
				logger.Warn().Err(err).Str("secondary", d.source.ID()).Msg("secondary source request failed")
				return nil
			}
			results[i] = sw
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, sw := range results {
		Merge(w, sw, delegated[i].features, tz)
	}

	Complete(w, tz)
	w.Normalize()
	return w, nil
}

type delegation struct {
	source   SecondarySource
	features Features
}

// plan splits the enabled features between the main source and the
// secondary sources configured on the location.
func (s *Service) plan(ctx context.Context, loc *Location, main Source, enabled Features, logger zerolog.Logger) (Features, []delegation) {
	mainFeatures := enabled.Intersect(main.SupportedFeatures())

	bySource := make(map[string]*delegation)
	var order []string
	for _, f := range enabled.List() {
		id, ok := loc.SecondarySources[f]
		if !ok || id == "" || id == main.ID() {
			continue
		}
		if !s.sourceEnabled(ctx, id) {
			logger.Debug().Str("secondary", id).Str("feature", string(f)).Msg("secondary source disabled")
			delete(mainFeatures, f)
			continue
		}
		sec, err := s.registry.Secondary(id)
		if err != nil {
			logger.Warn().Err(err).Str("feature", string(f)).Msg("unknown secondary source")
			continue
		}
		delete(mainFeatures, f)
		d, ok := bySource[id]
		if !ok {
			d = &delegation{source: sec, features: make(Features)}
			bySource[id] = d
			order = append(order, id)
		}
		d.features[f] = struct{}{}
	}

	delegated := make([]delegation, 0, len(order))
	for _, id := range order {
		delegated = append(delegated, *bySource[id])
	}
	return mainFeatures, delegated
}

// resolveParameters fills the location parameters src needs, if any.
func (s *Service) resolveParameters(ctx context.Context, src any, loc *Location) error {
	lps, ok := src.(LocationParametersSource)
	if !ok || !lps.NeedsLocationParameters(loc) {
		return nil
	}

	id := src.(interface{ ID() string }).ID()
	params, err := lps.RequestLocationParameters(ctx, loc)
	if err != nil {
		if errors.Is(err, ErrInvalidLocation) || upstreamFailure(err) {
			return fmt.Errorf("%s: %w", id, err)
		}
		return fmt.Errorf("%w: %s: %w", ErrInvalidLocation, id, err)
	}

	if loc.Parameters == nil {
		loc.Parameters = make(map[string]map[string]string)
	}
	loc.Parameters[id] = params
	return nil
}

// upstreamFailure reports whether err is a credential, quota, transport or
// cancellation failure rather than a location that cannot be resolved.
func upstreamFailure(err error) bool {
	for _, target := range []error{
		ErrMissingAPIKey, ErrUnauthorized, ErrRateLimited, ErrRequestFailed,
		context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
