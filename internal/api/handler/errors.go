package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nimbusweather/nimbus/internal/api/middleware"
	"github.com/nimbusweather/nimbus/internal/api/models"
	"github.com/nimbusweather/nimbus/internal/api/response"
	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// defaultRetryAfter is sent when an upstream 429 carried no Retry-After.
const defaultRetryAfter = 60 * time.Second

// writeWeatherError maps the weather error taxonomy to a problem response.
// Upstream credential problems are the operator's, not the caller's, so
// they surface as 502 rather than 401.
func writeWeatherError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := middleware.GetRequestID(r.Context())

	var p *models.Problem
	switch {
	case errors.Is(err, weather.ErrLocationNotFound):
		p = models.NewNotFound(traceID, "location not found")
	case errors.Is(err, weather.ErrInvalidCoordinates):
		p = models.NewBadRequest(traceID, "invalid coordinates", []models.FieldError{
			{Field: "latitude", Message: "must be between -90 and 90", Code: "OUT_OF_RANGE"},
			{Field: "longitude", Message: "must be between -180 and 180", Code: "OUT_OF_RANGE"},
		})
	case errors.Is(err, weather.ErrSourceNotFound), errors.Is(err, weather.ErrFeatureNotSupported):
		p = models.NewBadRequest(traceID, err.Error(), nil)
	case errors.Is(err, weather.ErrMissingAPIKey), errors.Is(err, weather.ErrUnauthorized):
		p = models.NewBadGateway(models.ProblemTypeSourceAuth, "Weather source rejected credentials", traceID,
			"the weather source rejected the request, check API key")
	case errors.Is(err, weather.ErrRateLimited):
		response.RetryAfter(w, retryAfter(err))
		p = models.NewProblem(models.ProblemTypeSourceRateLimited, "Weather source rate limited",
			http.StatusServiceUnavailable, traceID).WithDetail("the weather source is rate limiting requests")
	case errors.Is(err, weather.ErrInvalidLocation):
		p = models.NewUnprocessable(traceID, err.Error())
	case errors.Is(err, weather.ErrInvalidData):
		p = models.NewBadGateway(models.ProblemTypeSourceInvalidData, "Invalid weather data", traceID,
			"the weather source returned incomplete data")
	case errors.Is(err, weather.ErrSuperseded):
		p = models.NewConflict(traceID, "refresh superseded by a newer request")
	case errors.Is(err, context.DeadlineExceeded):
		p = models.NewServiceUnavailable(traceID, "weather refresh timed out")
	case errors.Is(err, weather.ErrRequestFailed):
		p = models.NewBadGateway(models.ProblemTypeSourceFailed, "Weather source unavailable", traceID,
			"the weather source request failed")
	default:
		p = models.NewInternalError(traceID, "unexpected error")
	}

	response.Problem(w, r, p)
}

func retryAfter(err error) time.Duration {
	var se *resilience.StatusError
	if errors.As(err, &se) && se.RetryAfter > 0 {
		return se.RetryAfter
	}
	return defaultRetryAfter
}
