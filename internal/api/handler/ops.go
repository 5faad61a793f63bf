package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/nimbusweather/nimbus/internal/api/models"
	"github.com/nimbusweather/nimbus/internal/api/response"
	"github.com/nimbusweather/nimbus/internal/featureflags"
	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

// Check probes one dependency for readiness.
type Check func(ctx context.Context) error

// OpsConfig holds the dependencies of the ops endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Sources reports circuit breaker health per source client.
	Sources *resilience.Registry

	// Flags lists active degradation flags. Optional.
	Flags *featureflags.Service

	// Checks are run by the readiness and status endpoints, keyed by
	// subsystem name.
	Checks map[string]Check
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	subsystems := h.subsystems(r.Context())

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	status := http.StatusOK
	for _, s := range subsystems {
		if s.Status == models.HealthStatusFail {
			health.Status = models.HealthStatusFail
			status = http.StatusServiceUnavailable
			if health.Details == nil {
				health.Details = map[string]interface{}{}
			}
			health.Details[s.Name] = *s.Detail
		}
	}
	response.JSON(w, r, status, health)
}

// SystemStatus handles GET /v1/ops/status - source and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: h.subsystems(ctx),
		Providers:  []models.ProviderStatus{},
	}

	for _, s := range status.Subsystems {
		if s.Status == models.HealthStatusFail {
			status.Status = models.HealthStatusFail
		}
	}

	if h.cfg.Sources != nil {
		for _, health := range h.cfg.Sources.AllHealth() {
			ps := providerStatus(health)
			if ps.Status != models.HealthStatusOK && status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	if h.cfg.Flags != nil {
		status.ActiveDegradationFlags = h.cfg.Flags.ActiveFlags(ctx)
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) subsystems(ctx context.Context) []models.SubsystemStatus {
	names := make([]string, 0, len(h.cfg.Checks))
	for name := range h.cfg.Checks {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]models.SubsystemStatus, 0, len(names))
	for _, name := range names {
		s := models.SubsystemStatus{Name: name, Status: models.HealthStatusOK}
		if err := h.cfg.Checks[name](ctx); err != nil {
			detail := err.Error()
			s.Status = models.HealthStatusFail
			s.Detail = &detail
		}
		out = append(out, s)
	}
	return out
}

func providerStatus(h *resilience.Health) models.ProviderStatus {
	ps := models.ProviderStatus{Provider: h.Name, Status: models.HealthStatusOK}
	switch {
	case h.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case h.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	}
	ps.LastSuccessAt = models.NewTimestamp(h.LastSuccessAt)
	ps.LastFailureAt = models.NewTimestamp(h.LastFailureAt)
	if h.LastError != "" {
		msg := h.LastError
		ps.Message = &msg
	}
	return ps
}
