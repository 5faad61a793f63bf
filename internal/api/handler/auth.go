package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nimbusweather/nimbus/internal/api/middleware"
	"github.com/nimbusweather/nimbus/internal/api/response"
	"github.com/nimbusweather/nimbus/internal/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// DevToken handles POST /v1/auth/dev-token - issues an admin token without
// credentials. Answers 404 unless development authentication is enabled.
func (h *AuthHandler) DevToken(w http.ResponseWriter, r *http.Request) {
	var req auth.DevTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	tokenResp, err := h.authService.DevAuthenticate(&req)
	if err != nil {
		if errors.Is(err, auth.ErrDevAuthDisabled) {
			response.NotFound(w, r, "not found")
			return
		}
		response.InternalError(w, r, "failed to issue token")
		return
	}

	response.JSON(w, r, http.StatusOK, tokenResp)
}

// subject returns the authenticated token subject of r.
func subject(r *http.Request) string {
	return middleware.GetSubject(r.Context())
}
