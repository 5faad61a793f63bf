// Package handler provides HTTP handlers for the Nimbus API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/api/models"
	"github.com/nimbusweather/nimbus/internal/api/response"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// ResponseVersion is the schema version reported by GET /v1/version.
const ResponseVersion = 1

// cachedOnlyRetryAfter is advised when reads are served from the store only
// and a location has no weather yet. The scheduled refresh fills it in.
const cachedOnlyRetryAfter = 5 * time.Minute

// CachePolicy decides whether reads may trigger a refresh.
type CachePolicy interface {
	IsCachedOnlyWeather(ctx context.Context) bool
}

// WeatherHandler serves the read-only weather resources.
type WeatherHandler struct {
	service *weather.Service
	policy  CachePolicy
	build   string
	logger  zerolog.Logger
}

// NewWeatherHandler creates a new WeatherHandler. policy may be nil.
func NewWeatherHandler(service *weather.Service, policy CachePolicy, build string, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{
		service: service,
		policy:  policy,
		build:   build,
		logger:  logger,
	}
}

// Version handles GET /v1/version.
func (h *WeatherHandler) Version(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Version{
		Version: ResponseVersion,
		Build:   h.build,
		Sources: h.service.Registry().Infos(),
	})
}

// ListLocations handles GET /v1/locations.
func (h *WeatherHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.Locations(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("listing locations failed")
		response.InternalError(w, r, "failed to list locations")
		return
	}

	list := models.LocationList{Items: make([]models.Location, 0, len(locations))}
	for _, loc := range locations {
		list.Items = append(list.Items, models.NewLocation(loc))
	}
	response.JSON(w, r, http.StatusOK, list)
}

// GetWeather handles GET /v1/locations/{locationId}/weather.
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	query, errs := models.ParseWeatherQuery(r.URL.Query())
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}

	id := chi.URLParam(r, "locationId")
	ctx := r.Context()

	var (
		loc *weather.Location
		err error
	)
	if h.policy != nil && h.policy.IsCachedOnlyWeather(ctx) {
		loc, err = h.service.Location(ctx, id)
		if err == nil && loc.Weather == nil {
			response.ServiceUnavailable(w, r, "weather is not available yet for this location", cachedOnlyRetryAfter)
			return
		}
	} else {
		loc, err = h.service.GetWeather(ctx, id)
	}
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}

	response.Weather(w, r, models.NewWeatherResponse(loc, query), loc.RefreshedAt)
}
