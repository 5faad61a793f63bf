package resilience

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Health is the health of one upstream.
type Health struct {
	Name          string
	CircuitState  gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// IsHealthy returns true while the circuit is closed.
func (h *Health) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// IsDegraded returns true while the circuit is half-open.
func (h *Health) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// IsUnhealthy returns true while the circuit is open.
func (h *Health) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Registry tracks clients and the outcome of their last requests. It
// implements Observer so clients can report to it directly.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*tracked
}

type tracked struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*tracked)}
}

// Register adds a client under its name, replacing any previous one.
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.Name()] = &tracked{client: client}
}

// ObserveRequest records the outcome of a request.
func (r *Registry) ObserveRequest(_ context.Context, name string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.clients[name]
	if !ok {
		return
	}
	now := time.Now()
	if err == nil {
		t.lastSuccessAt = &now
		return
	}
	t.lastFailureAt = &now
	t.lastError = err.Error()
}

// Health returns the health of a named client, or nil if unknown.
func (r *Registry) Health(name string) *Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.clients[name]
	if !ok {
		return nil
	}
	return t.health(name)
}

// AllHealth returns the health of every client ordered by name.
func (r *Registry) AllHealth() []*Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Health, 0, len(r.clients))
	for name, t := range r.clients {
		all = append(all, t.health(name))
	}
	slices.SortFunc(all, func(a, b *Health) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
	return all
}

func (t *tracked) health(name string) *Health {
	return &Health{
		Name:          name,
		CircuitState:  t.client.CircuitBreakerState(),
		Counts:        t.client.CircuitBreakerCounts(),
		LastSuccessAt: t.lastSuccessAt,
		LastFailureAt: t.lastFailureAt,
		LastError:     t.lastError,
	}
}
