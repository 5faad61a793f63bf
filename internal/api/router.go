// Package api provides the HTTP API for Nimbus.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/api/handler"
	"github.com/nimbusweather/nimbus/internal/api/middleware"
	"github.com/nimbusweather/nimbus/internal/auth"
	"github.com/nimbusweather/nimbus/internal/featureflags"
	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	AuthService        *auth.Service
	WeatherService     *weather.Service
	FeatureFlagService *featureflags.Service
	SourceHealth       *resilience.Registry

	// DefaultSource is used for locations created without a source.
	DefaultSource string

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool

	// RateLimits overrides the default per-client limits.
	RateLimits middleware.RateLimits

	// ReadinessChecks are probed by /v1/ops/ready, keyed by subsystem.
	ReadinessChecks map[string]handler.Check
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "nimbus-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON) // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Sources:   cfg.SourceHealth,
		Flags:     cfg.FeatureFlagService,
		Checks:    cfg.ReadinessChecks,
	})
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	adminHandler := handler.NewAdminHandler(cfg.WeatherService, cfg.DefaultSource)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService, cfg.Logger)

	var policy handler.CachePolicy
	if cfg.FeatureFlagService != nil {
		policy = cfg.FeatureFlagService
	}
	weatherHandler := handler.NewWeatherHandler(cfg.WeatherService, policy, cfg.BuildTime, cfg.Logger)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	limits := cfg.RateLimits.WithDefaults()
	authRateLimit := middleware.RateLimitByIP(limits.Auth)
	weatherRateLimit := middleware.RateLimitByLocation(limits.Weather)
	standardRateLimit := middleware.RateLimitByIP(limits.Standard)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.With(standardRateLimit).Get("/version", weatherHandler.Version)

		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit)
			r.Post("/dev-token", authHandler.DevToken)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Locations (public, read-only). Reading weather may refresh it.
		r.Route("/locations", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", weatherHandler.ListLocations)
			r.With(weatherRateLimit).Get("/{locationId}/weather", weatherHandler.GetWeather)
		})

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitBySubject(limits.Standard))
			r.Use(middleware.RequireJSON)

			r.Route("/locations", func(r chi.Router) {
				r.Post("/", adminHandler.CreateLocation)
				r.Delete("/{locationId}", adminHandler.DeleteLocation)
				r.Post("/{locationId}/refresh", adminHandler.RefreshLocation)
			})

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Delete("/{key}", featureFlagsHandler.DeleteFeatureFlag)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}
