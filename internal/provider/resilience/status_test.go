package resilience_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected error
	}{
		{http.StatusUnauthorized, resilience.ErrUnauthorized},
		{http.StatusForbidden, resilience.ErrUnauthorized},
		{http.StatusTooManyRequests, resilience.ErrRateLimited},
		{http.StatusNotFound, resilience.ErrRequestFailed},
		{http.StatusBadGateway, resilience.ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := resilience.CheckStatus(&http.Response{StatusCode: tt.status, Header: http.Header{}})
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	assert.NoError(t, resilience.CheckStatus(&http.Response{StatusCode: http.StatusNoContent}))
}

func TestCheckStatus_RetryAfter(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"30"}}}

	var se *resilience.StatusError
	require.ErrorAs(t, resilience.CheckStatus(resp), &se)
	assert.Equal(t, 30*time.Second, se.RetryAfter)
	assert.Contains(t, se.Error(), "Too Many Requests")
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"temp":21.5}`))
		case "/garbage":
			_, _ = w.Write([]byte(`not json`))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.DefaultClientConfig("test-json"))

	var body struct {
		Temp float64 `json:"temp"`
	}
	require.NoError(t, client.GetJSON(newRequest(t, context.Background(), server.URL+"/ok"), &body))
	assert.Equal(t, 21.5, body.Temp)

	err := client.GetJSON(newRequest(t, context.Background(), server.URL+"/garbage"), &body)
	assert.ErrorIs(t, err, resilience.ErrRequestFailed)

	err = client.GetJSON(newRequest(t, context.Background(), server.URL+"/forbidden"), &body)
	assert.ErrorIs(t, err, resilience.ErrUnauthorized)
}

func TestClient_FetchJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "52.37", r.URL.Query().Get("lat"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"temp":3}`))
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.DefaultClientConfig("test-fetch"))

	var body struct {
		Temp float64 `json:"temp"`
	}
	err := client.FetchJSON(context.Background(), server.URL+"/forecast", url.Values{"lat": {"52.37"}}, &body)
	require.NoError(t, err)
	assert.Equal(t, 3.0, body.Temp)
}

func TestClient_FetchJSONWithHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.DefaultClientConfig("test-fetch-header"))

	var body map[string]any
	header := http.Header{}
	header.Set("X-Api-Key", "secret")
	err := client.FetchJSONWithHeader(context.Background(), server.URL, nil, header, &body)
	require.NoError(t, err)
}
