package weather

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Source is a vendor that can provide the main forecast of a location.
type Source interface {
	ID() string
	Name() string

	// SupportedFeatures lists the optional features the source can return
	// alongside its forecast.
	SupportedFeatures() []Feature

	// RequestWeather fetches the forecast plus the requested features.
	// Unsupported features are ignored. Failing optional features are
	// dropped; a failing forecast fails the request.
	RequestWeather(ctx context.Context, loc *Location, features Features) (*Wrapper, error)
}

// SecondarySource is a vendor that can provide features for locations whose
// forecast comes from another source.
type SecondarySource interface {
	ID() string
	Name() string
	SecondaryFeatures() []Feature

	// RequestSecondaryWeather returns a wrapper holding only the requested
	// features. Failing features are dropped, not returned as errors.
	RequestSecondaryWeather(ctx context.Context, loc *Location, features Features) (*Wrapper, error)
}

// LocationParametersSource is implemented by sources that need
// vendor-specific location values (such as a location key) resolved before
// weather can be requested.
type LocationParametersSource interface {
	NeedsLocationParameters(loc *Location) bool

	// RequestLocationParameters resolves the parameters. Lookups that find
	// nothing wrap ErrInvalidLocation; upstream failures keep their own
	// sentinel.
	RequestLocationParameters(ctx context.Context, loc *Location) (map[string]string, error)
}

// SourceInfo describes a registered source.
type SourceInfo struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Primary           bool      `json:"primary"`
	Features          []Feature `json:"features,omitempty"`
	SecondaryFeatures []Feature `json:"secondaryFeatures,omitempty"`
}

// Registry holds the available sources by id.
type Registry struct {
	mu        sync.RWMutex
	primary   map[string]Source
	secondary map[string]SecondarySource
	names     map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		primary:   make(map[string]Source),
		secondary: make(map[string]SecondarySource),
		names:     make(map[string]string),
	}
}

// Register adds src as a main source, a secondary source, or both,
// depending on the interfaces it implements.
func (r *Registry) Register(src interface {
	ID() string
	Name() string
}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := src.(Source); ok {
		r.primary[s.ID()] = s
	}
	if s, ok := src.(SecondarySource); ok {
		r.secondary[s.ID()] = s
	}
	r.names[src.ID()] = src.Name()
}

// Source returns the main source with the given id.
func (r *Registry) Source(id string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.primary[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}
	return s, nil
}

// Secondary returns the secondary source with the given id.
func (r *Registry) Secondary(id string) (SecondarySource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.secondary[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}
	return s, nil
}

// Infos describes every registered source ordered by id.
func (r *Registry) Infos() []SourceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]SourceInfo, 0, len(r.names))
	for id, name := range r.names {
		info := SourceInfo{ID: id, Name: name}
		if s, ok := r.primary[id]; ok {
			info.Primary = true
			info.Features = s.SupportedFeatures()
		}
		if s, ok := r.secondary[id]; ok {
			info.SecondaryFeatures = s.SecondaryFeatures()
		}
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(a, b SourceInfo) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return infos
}
