// Package main provides the entrypoint for the Nimbus API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nimbusweather/nimbus/internal/api"
	"github.com/nimbusweather/nimbus/internal/api/middleware"
	"github.com/nimbusweather/nimbus/internal/app"
	"github.com/nimbusweather/nimbus/internal/auth"
	"github.com/nimbusweather/nimbus/internal/config"
	"github.com/nimbusweather/nimbus/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "nimbus-api"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error().Err(err).Msg("api exited")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, log zerolog.Logger) error {
	log.Info().Str("build_time", BuildTime).Msg("starting Nimbus API")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log = log.Level(cfg.LogLevel)

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()
	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Float64("sample_ratio", cfg.Telemetry.SampleRatio).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		return err
	}
	sourceMetrics, err := telemetry.NewSourceMetrics()
	if err != nil {
		return err
	}

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	ffService := app.NewFlags(stores.Flags, log)
	sources := app.NewSources(cfg.Sources, log, sourceMetrics)
	weatherService := app.NewWeatherService(cfg.Weather, stores, sources, ffService, log)
	log.Info().
		Str("store", cfg.StoreDriver).
		Int("sources", len(sources.Registry.Infos())).
		Str("default_source", cfg.Weather.DefaultSource).
		Msg("weather service initialized")

	devAuth := cfg.Env == "development"
	if devAuth {
		log.Warn().Msg("development token endpoint enabled - not for production")
	}
	authService := auth.NewService(auth.ServiceConfig{
		JWTService: auth.NewJWTService(auth.JWTConfig{
			SigningKey:         cfg.JWTSigningKey,
			PreviousSigningKey: cfg.JWTPreviousSigningKey,
		}),
		DevAuth: devAuth,
	})

	perMinute := func(n int) middleware.RateLimit {
		return middleware.RateLimit{Requests: n, Window: time.Minute}
	}
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		AuthService:        authService,
		WeatherService:     weatherService,
		FeatureFlagService: ffService,
		SourceHealth:       sources.Health,
		DefaultSource:      cfg.Weather.DefaultSource,
		ReadinessChecks:    stores.Checks,
		RequireTLS:         cfg.RequireTLS,
		RateLimits: middleware.RateLimits{
			Auth:     perMinute(cfg.RateLimits.AuthPerMinute),
			Weather:  perMinute(cfg.RateLimits.WeatherPerMinute),
			Standard: perMinute(cfg.RateLimits.StandardPerMinute),
		},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// A weather read may wait on a full source refresh.
		WriteTimeout: cfg.Weather.RefreshTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
