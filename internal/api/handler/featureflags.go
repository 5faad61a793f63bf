package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/api/models"
	"github.com/nimbusweather/nimbus/internal/api/response"
	"github.com/nimbusweather/nimbus/internal/featureflags"
)

// FeatureFlagsHandler handles feature flag endpoints.
type FeatureFlagsHandler struct {
	service *featureflags.Service
	logger  zerolog.Logger
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service *featureflags.Service, logger zerolog.Logger) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service, logger: logger}
}

// ListFeatureFlags handles GET /v1/admin/feature-flags - list all feature flags.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, featureflags.FlagList{Items: h.service.GetAllFlags(r.Context())})
}

// UpsertFeatureFlags handles PUT /v1/admin/feature-flags - update feature flags.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var req featureflags.FlagUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var errs []models.FieldError
	if len(req.Updates) == 0 {
		errs = append(errs, models.FieldError{Field: "updates", Message: "at least one update is required", Code: "REQUIRED"})
	}
	flags := make([]*featureflags.Flag, 0, len(req.Updates))
	for i, u := range req.Updates {
		field := "updates[" + strconv.Itoa(i) + "]"
		switch {
		case strings.TrimSpace(u.Key) == "":
			errs = append(errs, models.FieldError{Field: field + ".key", Message: "key is required", Code: "REQUIRED"})
			continue
		case !featureflags.ValidKey(u.Key):
			errs = append(errs, models.FieldError{Field: field + ".key", Message: "unknown flag " + strconv.Quote(u.Key), Code: "INVALID"})
			continue
		}
		if _, ok := u.Value.(bool); !ok {
			errs = append(errs, models.FieldError{Field: field + ".value", Message: "value must be a boolean", Code: "INVALID"})
			continue
		}
		flags = append(flags, &featureflags.Flag{Key: u.Key, Value: u.Value})
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	if err := h.service.SetFlags(r.Context(), flags); err != nil {
		h.logger.Error().Err(err).Msg("updating feature flags failed")
		response.InternalError(w, r, "failed to update feature flags")
		return
	}

	h.logger.Info().
		Str("subject", subject(r)).
		Str("reason", req.Reason).
		Int("count", len(flags)).
		Msg("feature flags updated")
	response.NoContent(w, r)
}

// DeleteFeatureFlag handles DELETE /v1/admin/feature-flags/{key}, reverting
// the flag to its default.
func (h *FeatureFlagsHandler) DeleteFeatureFlag(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	err := h.service.DeleteFlag(r.Context(), key)
	switch {
	case errors.Is(err, featureflags.ErrFlagNotFound):
		response.NotFound(w, r, "feature flag "+strconv.Quote(key)+" is not set")
		return
	case err != nil:
		h.logger.Error().Err(err).Str("flag", key).Msg("deleting feature flag failed")
		response.InternalError(w, r, "failed to delete feature flag")
		return
	}

	h.logger.Info().Str("subject", subject(r)).Str("flag", key).Msg("feature flag deleted")
	response.NoContent(w, r)
}

// InvalidateCache handles POST /v1/admin/feature-flags/invalidate - invalidate flag cache.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}
