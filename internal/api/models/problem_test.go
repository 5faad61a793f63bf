package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/api/models"
)

func TestProblem_NewProblem(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	)

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, "Validation error", p.Title)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "req_test123", p.TraceID)
	assert.Empty(t, p.Detail)
	assert.Empty(t, p.Instance)
	assert.Nil(t, p.Errors)
}

func TestProblem_WithDetail(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	).WithDetail("latitude must be between -90 and 90")

	assert.Equal(t, "latitude must be between -90 and 90", p.Detail)
}

func TestProblem_WithInstance(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	).WithInstance("/v1/admin/locations")

	assert.Equal(t, "/v1/admin/locations", p.Instance)
}

func TestProblem_WithErrors(t *testing.T) {
	fieldErrors := []models.FieldError{
		{Field: "latitude", Message: "must be between -90 and 90", Code: "OUT_OF_RANGE"},
		{Field: "longitude", Message: "required", Code: "REQUIRED"},
	}

	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	).WithErrors(fieldErrors)

	require.Len(t, p.Errors, 2)
	assert.Equal(t, "latitude", p.Errors[0].Field)
	assert.Equal(t, "must be between -90 and 90", p.Errors[0].Message)
	assert.Equal(t, "OUT_OF_RANGE", p.Errors[0].Code)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_test123", "invalid input", []models.FieldError{
		{Field: "source", Message: "invalid format"},
	})
	p.Instance = "/v1/admin/locations"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, result.Type)
	assert.Equal(t, "Validation error", result.Title)
	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Equal(t, "invalid input", result.Detail)
	assert.Equal(t, "/v1/admin/locations", result.Instance)
	assert.Equal(t, "req_test123", result.TraceID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "source", result.Errors[0].Field)
}

func TestProblemConstructors(t *testing.T) {
	tests := []struct {
		name     string
		problem  *models.Problem
		wantType string
		status   int
	}{
		{"bad request", models.NewBadRequest("req_123", "detail", nil), models.ProblemTypeValidation, http.StatusBadRequest},
		{"unauthorized", models.NewUnauthorized("req_123", "detail"), models.ProblemTypeUnauthorized, http.StatusUnauthorized},
		{"forbidden", models.NewForbidden("req_123", "detail"), models.ProblemTypeForbidden, http.StatusForbidden},
		{"not found", models.NewNotFound("req_123", "detail"), models.ProblemTypeNotFound, http.StatusNotFound},
		{"conflict", models.NewConflict("req_123", "detail"), models.ProblemTypeConflict, http.StatusConflict},
		{"unsupported media type", models.NewUnsupportedMediaType("req_123", "detail"), models.ProblemTypeUnsupportedType, http.StatusUnsupportedMediaType},
		{"unprocessable", models.NewUnprocessable("req_123", "detail"), models.ProblemTypeInvalidLocation, http.StatusUnprocessableEntity},
		{"too many requests", models.NewTooManyRequests("req_123", "detail"), models.ProblemTypeTooManyRequests, http.StatusTooManyRequests},
		{"internal", models.NewInternalError("req_123", "detail"), models.ProblemTypeInternal, http.StatusInternalServerError},
		{"unavailable", models.NewServiceUnavailable("req_123", "detail"), models.ProblemTypeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.problem.Type)
			assert.Equal(t, tt.status, tt.problem.Status)
			assert.NotEmpty(t, tt.problem.Title)
			assert.Equal(t, "detail", tt.problem.Detail)
			assert.Equal(t, "req_123", tt.problem.TraceID)
		})
	}
}

func TestForStatus_Unknown(t *testing.T) {
	p := models.ForStatus(http.StatusTeapot, "", "")

	assert.Equal(t, "about:blank", p.Type)
	assert.Equal(t, "I'm a teapot", p.Title)
	assert.Equal(t, "418 I'm a teapot", p.Error())
}

func TestProblem_Error(t *testing.T) {
	var err error = models.NewNotFound("req_1", "location loc_9 not found")
	assert.EqualError(t, err, "404 Not found: location loc_9 not found")
}

func TestProblem_Write_NoTraceID(t *testing.T) {
	w := httptest.NewRecorder()
	models.NewInternalError("", "boom").Write(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	_, present := w.Header()["X-Request-Id"]
	assert.False(t, present)
}

func TestNewBadGateway(t *testing.T) {
	p := models.NewBadGateway(models.ProblemTypeSourceAuth, "Source rejected credentials", "req_123", "check API key")

	assert.Equal(t, models.ProblemTypeSourceAuth, p.Type)
	assert.Equal(t, "Source rejected credentials", p.Title)
	assert.Equal(t, http.StatusBadGateway, p.Status)
	assert.Equal(t, "check API key", p.Detail)
}

func TestTimestamp_JSON(t *testing.T) {
	local := time.Date(2026, 3, 1, 13, 30, 15, 500, time.FixedZone("CET", 3600))
	ts := models.NewTimestamp(&local)

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-01T12:30:15Z"`, string(data))

	var back models.Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Time().Equal(local.Truncate(time.Second)))

	assert.Nil(t, models.NewTimestamp(nil))
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &back))
	assert.Error(t, json.Unmarshal([]byte(`42`), &back))
}
