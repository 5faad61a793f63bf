package featureflags

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository keeps flags in a map. It backs tests and the memory and
// sqlite store drivers, where flags reset on restart.
type InMemoryRepository struct {
	mu    sync.RWMutex
	flags map[string]*Flag
	err   error
}

// NewInMemoryRepository creates an empty repository, optionally seeded.
func NewInMemoryRepository(seed ...*Flag) *InMemoryRepository {
	r := &InMemoryRepository{flags: make(map[string]*Flag, len(seed))}
	for _, f := range seed {
		r.flags[f.Key] = f.clone()
	}
	return r
}

// FailWith makes every call return err until it is called with nil.
func (r *InMemoryRepository) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

func (r *InMemoryRepository) List(_ context.Context) ([]*Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}

	out := make([]*Flag, 0, len(r.flags))
	for _, f := range r.flags {
		out = append(out, f.clone())
	}
	return out, nil
}

func (r *InMemoryRepository) Upsert(_ context.Context, flags []*Flag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	now := time.Now().UTC()
	for _, f := range flags {
		c := f.clone()
		c.UpdatedAt = now
		r.flags[c.Key] = c
	}
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	if _, ok := r.flags[key]; !ok {
		return ErrFlagNotFound
	}
	delete(r.flags, key)
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
