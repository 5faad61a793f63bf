// Package response writes API responses. Successful responses are JSON and
// errors are RFC 7807 problems; both echo the request id.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/nimbusweather/nimbus/internal/api/middleware"
	"github.com/nimbusweather/nimbus/internal/api/models"
)

func echoRequestID(w http.ResponseWriter, r *http.Request) string {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set(middleware.RequestIDHeader, requestID)
	}
	return requestID
}

// JSON writes data as JSON with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	echoRequestID(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Weather writes a 200 weather document. Last-Modified carries the time the
// stored weather was refreshed so clients can tell how old it is.
func Weather(w http.ResponseWriter, r *http.Request, data interface{}, refreshedAt *time.Time) {
	if refreshedAt != nil {
		w.Header().Set("Last-Modified", refreshedAt.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Cache-Control", "no-cache")
	JSON(w, r, http.StatusOK, data)
}

// Created writes a 201 response pointing at the new resource.
func Created(w http.ResponseWriter, r *http.Request, location string, data interface{}) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	JSON(w, r, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter, r *http.Request) {
	echoRequestID(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Problem writes p with the request path as its instance.
func Problem(w http.ResponseWriter, r *http.Request, p *models.Problem) {
	echoRequestID(w, r)
	p.Instance = r.URL.Path
	p.Write(w)
}

// RetryAfter sets the Retry-After header in whole seconds, rounding up.
// Non-positive durations leave it unset.
func RetryAfter(w http.ResponseWriter, d time.Duration) {
	if d <= 0 {
		return
	}
	secs := int((d + time.Second - 1) / time.Second)
	w.Header().Set("Retry-After", strconv.Itoa(secs))
}

// BadRequest writes a 400 validation problem.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	Problem(w, r, models.NewBadRequest(middleware.GetRequestID(r.Context()), detail, errors))
}

// NotFound writes a 404 problem.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Problem(w, r, models.NewNotFound(middleware.GetRequestID(r.Context()), detail))
}

// InternalError writes a 500 problem. detail must not leak internals.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Problem(w, r, models.NewInternalError(middleware.GetRequestID(r.Context()), detail))
}

// ServiceUnavailable writes a 503 problem, advising a retry when retryAfter
// is positive.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string, retryAfter time.Duration) {
	RetryAfter(w, retryAfter)
	Problem(w, r, models.NewServiceUnavailable(middleware.GetRequestID(r.Context()), detail))
}
