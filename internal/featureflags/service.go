package featureflags

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const defaultCacheTTL = time.Minute

// ServiceConfig holds configuration for the feature flag service.
type ServiceConfig struct {
	Repository   Repository
	Logger       zerolog.Logger
	CacheTTL     time.Duration
	DefaultFlags map[string]*Flag
}

// snapshot is the full flag set as of loadedAt, defaults included.
type snapshot struct {
	flags    map[string]*Flag
	loadedAt time.Time
}

// Service evaluates flags against a cached snapshot of the repository. A
// weather read checks several switches, so the whole set is loaded at once
// and concurrent reloads are collapsed into one query. When the repository
// fails the last snapshot keeps being served, or the defaults if there is
// none.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	cacheTTL time.Duration
	defaults map[string]*Flag

	loads   singleflight.Group
	mu      sync.RWMutex
	current *snapshot
	now     func() time.Time
}

// NewService creates a new feature flag service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	defaults := cfg.DefaultFlags
	if defaults == nil {
		defaults = DefaultFlags()
	}

	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		cacheTTL: cacheTTL,
		defaults: defaults,
		now:      time.Now,
	}
}

func (s *Service) snapshot(ctx context.Context) map[string]*Flag {
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()
	if snap != nil && s.now().Sub(snap.loadedAt) < s.cacheTTL {
		return snap.flags
	}

	v, err, _ := s.loads.Do("flags", func() (interface{}, error) {
		return s.load(context.WithoutCancel(ctx))
	})
	if err == nil {
		return v.(map[string]*Flag)
	}

	if snap == nil {
		s.logger.Warn().Err(err).Msg("loading feature flags failed, using defaults")
		return s.defaults
	}
	s.logger.Warn().Err(err).
		Time("loaded_at", snap.loadedAt).
		Msg("loading feature flags failed, keeping last known flags")

	// Hold on to the stale set for another TTL instead of querying the
	// failing store on every request.
	s.mu.Lock()
	if s.current == snap {
		s.current = &snapshot{flags: snap.flags, loadedAt: s.now()}
	}
	s.mu.Unlock()
	return snap.flags
}

func (s *Service) load(ctx context.Context) (map[string]*Flag, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	flags := make(map[string]*Flag, len(s.defaults)+len(stored))
	for k, v := range s.defaults {
		flags[k] = v
	}
	for _, f := range stored {
		flags[f.Key] = f
	}

	s.mu.Lock()
	s.current = &snapshot{flags: flags, loadedAt: s.now()}
	s.mu.Unlock()
	return flags, nil
}

// GetFlag returns the flag with key, or nil when it is neither stored nor
// defaulted. The result must not be modified.
func (s *Service) GetFlag(ctx context.Context, key string) *Flag {
	return s.snapshot(ctx)[key]
}

// GetAllFlags returns every flag in effect, sorted by key.
func (s *Service) GetAllFlags(ctx context.Context) []Flag {
	snap := s.snapshot(ctx)
	out := make([]Flag, 0, len(snap))
	for _, f := range snap {
		out = append(out, *f)
	}
	slices.SortFunc(out, func(a, b Flag) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

// SetFlags stores flags and drops the cached snapshot so that the change is
// visible on the next read.
func (s *Service) SetFlags(ctx context.Context, flags []*Flag) error {
	if err := s.repo.Upsert(ctx, flags); err != nil {
		return err
	}
	s.InvalidateCache()
	return nil
}

// DeleteFlag removes a stored flag, reverting it to its default.
func (s *Service) DeleteFlag(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	s.InvalidateCache()
	return nil
}

// InvalidateCache forces the next read to go to the repository. Other
// instances pick up changes within the cache TTL.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// IsEnabled reports whether the flag with key is set to a truthy value.
func (s *Service) IsEnabled(ctx context.Context, key string) bool {
	return s.GetFlag(ctx, key).BoolValue(false)
}

// ActiveFlags returns the keys of all flags currently switched on, sorted.
func (s *Service) ActiveFlags(ctx context.Context) []string {
	var keys []string
	for _, f := range s.GetAllFlags(ctx) {
		if f.BoolValue(false) {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// IsCachedOnlyWeather returns true if reads must not trigger a refresh.
func (s *Service) IsCachedOnlyWeather(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagCachedOnlyWeather)
}

// IsScheduledRefreshDisabled returns true if the periodic refresh is paused.
func (s *Service) IsScheduledRefreshDisabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagDisableScheduledRefresh)
}

// SourceEnabled reports whether the source with the given id may be called.
func (s *Service) SourceEnabled(ctx context.Context, id string) bool {
	return !s.IsEnabled(ctx, SourceFlag(id))
}

// FeatureEnabled reports whether a weather feature may be requested.
func (s *Service) FeatureEnabled(ctx context.Context, feature string) bool {
	return !s.IsEnabled(ctx, FeatureFlag(feature))
}
