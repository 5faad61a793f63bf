package resilience_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

func TestRegistry_ObservesClientRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := resilience.NewRegistry()
	cfg := resilience.DefaultClientConfig("openmeteo")
	cfg.Observers = []resilience.Observer{registry}
	client := resilience.NewClient(cfg)
	registry.Register(client)

	health := registry.Health("openmeteo")
	require.NotNil(t, health)
	assert.True(t, health.IsHealthy())
	assert.Nil(t, health.LastSuccessAt)

	resp, err := client.Do(newRequest(t, context.Background(), server.URL+"/ok"))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Do(newRequest(t, context.Background(), server.URL+"/fail"))
	require.NoError(t, err)
	resp.Body.Close()

	health = registry.Health("openmeteo")
	assert.NotNil(t, health.LastSuccessAt)
	assert.NotNil(t, health.LastFailureAt)
	assert.Contains(t, health.LastError, "401")
}

func TestRegistry_UnknownName(t *testing.T) {
	registry := resilience.NewRegistry()

	assert.Nil(t, registry.Health("missing"))
	registry.ObserveRequest(context.Background(), "missing", 0, assert.AnError)
	assert.Empty(t, registry.AllHealth())
}

func TestRegistry_AllHealthSorted(t *testing.T) {
	registry := resilience.NewRegistry()
	for _, name := range []string{"metno", "accuweather", "openmeteo"} {
		registry.Register(resilience.NewClient(resilience.DefaultClientConfig(name)))
	}

	all := registry.AllHealth()
	require.Len(t, all, 3)
	assert.Equal(t, "accuweather", all[0].Name)
	assert.Equal(t, "metno", all[1].Name)
	assert.Equal(t, "openmeteo", all[2].Name)
}

func TestHealth_States(t *testing.T) {
	tests := []struct {
		state       gobreaker.State
		isHealthy   bool
		isDegraded  bool
		isUnhealthy bool
	}{
		{gobreaker.StateClosed, true, false, false},
		{gobreaker.StateHalfOpen, false, true, false},
		{gobreaker.StateOpen, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := &resilience.Health{CircuitState: tt.state}
			assert.Equal(t, tt.isHealthy, h.IsHealthy())
			assert.Equal(t, tt.isDegraded, h.IsDegraded())
			assert.Equal(t, tt.isUnhealthy, h.IsUnhealthy())
		})
	}
}
