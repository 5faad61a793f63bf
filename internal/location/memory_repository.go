// Package location stores locations together with their last good weather.
// Every implementation satisfies weather.Repository.
package location

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/nimbusweather/nimbus/internal/weather"
)

// InMemoryRepository is an in-memory implementation of weather.Repository.
// This is intended for testing and single-instance deployments.
type InMemoryRepository struct {
	mu        sync.RWMutex
	locations map[string]*weather.Location
}

// NewInMemoryRepository creates a new in-memory location repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		locations: make(map[string]*weather.Location),
	}
}

// Get retrieves a location by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*weather.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loc, ok := r.locations[id]
	if !ok {
		return nil, weather.ErrLocationNotFound
	}
	return clone(loc), nil
}

// List returns every location ordered by ID.
func (r *InMemoryRepository) List(_ context.Context) ([]*weather.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*weather.Location, 0, len(r.locations))
	for _, loc := range r.locations {
		out = append(out, clone(loc))
	}
	slices.SortFunc(out, func(a, b *weather.Location) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Save creates or replaces a location.
func (r *InMemoryRepository) Save(_ context.Context, loc *weather.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.locations[loc.ID] = clone(loc)
	return nil
}

// Delete removes a location.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.locations[id]; !ok {
		return weather.ErrLocationNotFound
	}
	delete(r.locations, id)
	return nil
}

// clone copies the location and its maps. The weather wrapper is shared:
// the service replaces it wholesale and never mutates a stored one.
func clone(loc *weather.Location) *weather.Location {
	cpy := *loc
	cpy.SecondarySources = maps.Clone(loc.SecondarySources)
	if loc.Parameters != nil {
		cpy.Parameters = make(map[string]map[string]string, len(loc.Parameters))
		for id, params := range loc.Parameters {
			cpy.Parameters[id] = maps.Clone(params)
		}
	}
	return &cpy
}
