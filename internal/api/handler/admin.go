package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nimbusweather/nimbus/internal/api/models"
	"github.com/nimbusweather/nimbus/internal/api/response"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// AdminHandler handles location management.
type AdminHandler struct {
	service       *weather.Service
	defaultSource string
}

// NewAdminHandler creates a new AdminHandler. defaultSource is used for
// locations created without a source.
func NewAdminHandler(service *weather.Service, defaultSource string) *AdminHandler {
	return &AdminHandler{service: service, defaultSource: defaultSource}
}

// CreateLocation handles POST /v1/admin/locations.
func (h *AdminHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	loc, err := h.service.CreateLocation(r.Context(), req.ToLocation(h.defaultSource))
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}

	response.Created(w, r, "/v1/locations/"+loc.ID+"/weather", models.NewLocation(loc))
}

// DeleteLocation handles DELETE /v1/admin/locations/{locationId}.
func (h *AdminHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLocation(r.Context(), chi.URLParam(r, "locationId")); err != nil {
		writeWeatherError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// RefreshLocation handles POST /v1/admin/locations/{locationId}/refresh. The
// refresh runs synchronously; the response carries the new refresh time.
func (h *AdminHandler) RefreshLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.service.Refresh(r.Context(), chi.URLParam(r, "locationId"))
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewLocation(loc))
}
