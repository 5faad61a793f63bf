package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/api/middleware"
	"github.com/nimbusweather/nimbus/internal/api/models"
	"github.com/nimbusweather/nimbus/internal/api/response"
)

// serve runs fn behind the RequestID middleware and returns the recorder.
func serve(t *testing.T, method, path string, fn http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	middleware.RequestID(fn).ServeHTTP(rec, httptest.NewRequest(method, path, http.NoBody))
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestJSON(t *testing.T) {
	rec := serve(t, http.MethodGet, "/v1/locations", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"message": "hello"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("X-Request-Id"), "req_")
	assert.JSONEq(t, `{"message":"hello"}`, rec.Body.String())
}

func TestJSON_NilDataAndNoRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody), http.StatusAccepted, nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
}

func TestWeather(t *testing.T) {
	refreshed := time.Date(2026, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))

	rec := serve(t, http.MethodGet, "/v1/locations/loc_1/weather", func(w http.ResponseWriter, r *http.Request) {
		response.Weather(w, r, map[string]int{"version": 1}, &refreshed)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sun, 01 Mar 2026 11:30:00 GMT", rec.Header().Get("Last-Modified"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	rec = serve(t, http.MethodGet, "/v1/locations/loc_1/weather", func(w http.ResponseWriter, r *http.Request) {
		response.Weather(w, r, map[string]int{"version": 1}, nil)
	})
	assert.Empty(t, rec.Header().Get("Last-Modified"))
}

func TestCreated(t *testing.T) {
	rec := serve(t, http.MethodPost, "/v1/admin/locations", func(w http.ResponseWriter, r *http.Request) {
		response.Created(w, r, "/v1/locations/loc_1/weather", map[string]string{"id": "loc_1"})
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/v1/locations/loc_1/weather", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"id":"loc_1"}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	rec := serve(t, http.MethodDelete, "/v1/admin/locations/loc_1", func(w http.ResponseWriter, r *http.Request) {
		response.NoContent(w, r)
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Empty(t, rec.Body.String())
}

func TestProblems(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter, r *http.Request)
		status int
		typ    string
	}{
		{
			name: "bad request",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.BadRequest(w, r, "invalid query", []models.FieldError{{Field: "units", Message: "unknown", Code: "INVALID"}})
			},
			status: http.StatusBadRequest,
			typ:    models.ProblemTypeValidation,
		},
		{
			name:   "not found",
			write:  func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "location not found") },
			status: http.StatusNotFound,
			typ:    models.ProblemTypeNotFound,
		},
		{
			name:   "internal",
			write:  func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "unexpected error") },
			status: http.StatusInternalServerError,
			typ:    models.ProblemTypeInternal,
		},
		{
			name: "unavailable",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.ServiceUnavailable(w, r, "not yet", 0)
			},
			status: http.StatusServiceUnavailable,
			typ:    models.ProblemTypeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, http.MethodGet, "/v1/locations/loc_1/weather", tt.write)

			assert.Equal(t, tt.status, rec.Code)
			p := decodeProblem(t, rec)
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, "/v1/locations/loc_1/weather", p.Instance)
			assert.Equal(t, rec.Header().Get("X-Request-Id"), p.TraceID)
			assert.Empty(t, rec.Header().Get("Retry-After"))
		})
	}
}

func TestServiceUnavailable_RetryAfter(t *testing.T) {
	rec := serve(t, http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
		response.ServiceUnavailable(w, r, "try later", 90*time.Second)
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "90", rec.Header().Get("Retry-After"))
}

func TestRetryAfter_RoundsUp(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: ""},
		{d: -time.Second, want: ""},
		{d: 300 * time.Millisecond, want: "1"},
		{d: 30 * time.Second, want: "30"},
		{d: 30*time.Second + time.Millisecond, want: "31"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		response.RetryAfter(rec, tt.d)
		assert.Equal(t, tt.want, rec.Header().Get("Retry-After"), tt.d.String())
	}
}
