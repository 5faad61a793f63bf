package airquality

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Network is a station measurement network publishing full snapshots.
type Network interface {
	FetchSnapshot(ctx context.Context) (*AQSnapshot, error)
}

// ServiceConfig holds configuration for the station network service.
type ServiceConfig struct {
	Network      Network
	Interpolator *Interpolator
	Logger       zerolog.Logger

	// CacheTTL is how long a snapshot is reused (default: 15 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving an older snapshot while the network
	// fails (default: 2 hours).
	StaleIfErrorTTL time.Duration
}

// Service estimates air quality at arbitrary points from a cached network
// snapshot.
type Service struct {
	network         Network
	interpolator    *Interpolator
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	mu          sync.Mutex
	snapshot    *AQSnapshot
	cacheExpiry time.Time
}

// NewService creates a new Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.StaleIfErrorTTL == 0 {
		cfg.StaleIfErrorTTL = 2 * time.Hour
	}
	if cfg.Interpolator == nil {
		cfg.Interpolator = NewInterpolator(DefaultInterpolationConfig())
	}

	return &Service{
		network:         cfg.Network,
		interpolator:    cfg.Interpolator,
		logger:          cfg.Logger,
		cacheTTL:        cfg.CacheTTL,
		staleIfErrorTTL: cfg.StaleIfErrorTTL,
	}
}

// AirQualityAt returns the estimated air quality at a point.
func (s *Service) AirQualityAt(ctx context.Context, lat, lon float64) (*Estimate, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	est, err := s.interpolator.Interpolate(lat, lon, snapshot)
	if err != nil {
		return nil, fmt.Errorf("interpolating at %.4f,%.4f: %w", lat, lon, err)
	}
	return est, nil
}

// Snapshot returns the cached snapshot, fetching a new one once it expires.
// Concurrent callers share a single fetch.
func (s *Service) Snapshot(ctx context.Context) (*AQSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.snapshot != nil && now.Before(s.cacheExpiry) {
		return s.snapshot, nil
	}

	s.logger.Debug().Msg("refreshing air quality snapshot")

	snapshot, err := s.network.FetchSnapshot(ctx)
	if err != nil {
		if s.snapshot != nil && now.Before(s.snapshot.FetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Err(err).
				Time("fetched_at", s.snapshot.FetchedAt).
				Msg("serving stale air quality snapshot")
			return s.snapshot, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	s.snapshot = snapshot
	s.cacheExpiry = now.Add(s.cacheTTL)

	s.logger.Info().
		Str("provider", snapshot.Provider).
		Int("stations", len(snapshot.Stations)).
		Int("measurements", len(snapshot.Measurements)).
		Msg("air quality snapshot refreshed")

	return snapshot, nil
}

// Invalidate drops the cached snapshot.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.cacheExpiry = time.Time{}
}
