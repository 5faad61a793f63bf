// Package app assembles the stores and sources shared by the API server and
// the worker.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/airquality/luchtmeetnet"
	"github.com/nimbusweather/nimbus/internal/api/handler"
	"github.com/nimbusweather/nimbus/internal/config"
	"github.com/nimbusweather/nimbus/internal/database"
	"github.com/nimbusweather/nimbus/internal/featureflags"
	"github.com/nimbusweather/nimbus/internal/location"
	"github.com/nimbusweather/nimbus/internal/pollen/ambee"
	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/sources/accuweather"
	"github.com/nimbusweather/nimbus/internal/sources/azuremaps"
	"github.com/nimbusweather/nimbus/internal/sources/meteofrance"
	"github.com/nimbusweather/nimbus/internal/sources/metno"
	"github.com/nimbusweather/nimbus/internal/sources/openmeteo"
	"github.com/nimbusweather/nimbus/internal/sources/openweathermap"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// Stores holds the repositories selected by the configured store driver.
type Stores struct {
	Locations weather.Repository
	Flags     featureflags.Repository

	// Checks probe the backing database for readiness.
	Checks map[string]handler.Check

	closers []func()
}

// OpenStores connects to the configured store and prepares its schema.
func OpenStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Stores, error) {
	s := &Stores{Checks: make(map[string]handler.Check)}

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)

		repo := location.NewPostgresRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("migrating locations: %w", err)
		}
		flags := featureflags.NewPostgresRepository(pool)
		if err := flags.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("migrating feature flags: %w", err)
		}
		s.Locations = repo
		s.Flags = flags
		s.Checks["database"] = pool.Ping

		logger.Info().
			Str("host", cfg.Postgres.Host).
			Int("port", cfg.Postgres.Port).
			Str("database", cfg.Postgres.Database).
			Msg("database connected")

	case config.StoreSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = db.Close() })

		repo := location.NewSQLiteRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("migrating locations: %w", err)
		}
		flags := featureflags.NewSQLiteRepository(db)
		if err := flags.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("migrating feature flags: %w", err)
		}
		s.Locations = repo
		s.Flags = flags
		s.Checks["database"] = db.PingContext

		logger.Info().Str("path", cfg.SQLite.Path).Msg("sqlite database opened")

	default:
		s.Locations = location.NewInMemoryRepository()
		s.Flags = featureflags.NewInMemoryRepository()
		logger.Warn().Msg("using in-memory store - data is lost on restart")
	}

	return s, nil
}

// Close releases the store connections.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Sources holds the registered weather sources and the health of their
// HTTP clients.
type Sources struct {
	Registry *weather.Registry
	Health   *resilience.Registry
}

// NewSources registers every known source. Each source gets its own
// resilient client reporting to the health registry and to observers.
func NewSources(cfg config.SourcesConfig, logger zerolog.Logger, observers ...resilience.Observer) *Sources {
	s := &Sources{
		Registry: weather.NewRegistry(),
		Health:   resilience.NewRegistry(),
	}

	newClient := func(name, userAgent string) *resilience.Client {
		ccfg := resilience.DefaultClientConfig(name)
		ccfg.RateLimit = rate.Limit(cfg.RateLimit)
		ccfg.UserAgent = userAgent
		ccfg.Observers = append([]resilience.Observer{s.Health}, observers...)

		client := resilience.NewClient(ccfg)
		s.Health.Register(client)
		return client
	}

	s.Registry.Register(openmeteo.New(openmeteo.Config{
		HTTPClient: newClient(openmeteo.ID, ""),
		Logger:     logger,
	}))
	s.Registry.Register(openweathermap.New(openweathermap.Config{
		APIKey:     cfg.OpenWeatherMapAPIKey,
		Language:   cfg.Language,
		HTTPClient: newClient(openweathermap.ID, ""),
		Logger:     logger,
	}))
	s.Registry.Register(metno.New(metno.Config{
		UserAgent:  cfg.MetNoUserAgent,
		HTTPClient: newClient(metno.ID, cfg.MetNoUserAgent),
		Logger:     logger,
	}))
	s.Registry.Register(accuweather.New(accuweather.Config{
		APIKey:     cfg.AccuWeatherAPIKey,
		Language:   cfg.Language,
		HTTPClient: newClient(accuweather.ID, ""),
		Logger:     logger,
	}))
	s.Registry.Register(meteofrance.New(meteofrance.Config{
		APIKey:     cfg.MeteoFranceAPIKey,
		Language:   cfg.Language,
		HTTPClient: newClient(meteofrance.ID, ""),
		Logger:     logger,
	}))
	s.Registry.Register(azuremaps.New(azuremaps.Config{
		SubscriptionKey: cfg.AzureMapsAPIKey,
		Language:        cfg.Language,
		HTTPClient:      newClient(azuremaps.ID, ""),
		Logger:          logger,
	}))

	network := luchtmeetnet.NewClient(luchtmeetnet.ClientConfig{
		HTTPClient: newClient(luchtmeetnet.ProviderName, ""),
	})
	s.Registry.Register(luchtmeetnet.NewSource(airquality.NewService(airquality.ServiceConfig{
		Network: network,
		Logger:  logger,
	})))

	s.Registry.Register(ambee.New(ambee.Config{
		APIKey:     cfg.AmbeeAPIKey,
		HTTPClient: newClient(ambee.ProviderName, ""),
		Logger:     logger,
	}))

	return s
}

// NewFlags creates the feature flag service on repo.
func NewFlags(repo featureflags.Repository, logger zerolog.Logger) *featureflags.Service {
	return featureflags.NewService(featureflags.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
}

// NewWeatherService creates the weather service over the stores and sources.
func NewWeatherService(cfg config.WeatherConfig, stores *Stores, sources *Sources, gate weather.Gate, logger zerolog.Logger) *weather.Service {
	return weather.NewService(weather.ServiceConfig{
		Registry:        sources.Registry,
		Repository:      stores.Locations,
		Gate:            gate,
		Logger:          logger,
		CacheTTL:        cfg.CacheTTL,
		StaleIfErrorTTL: cfg.StaleIfErrorTTL,
		RefreshTimeout:  cfg.RefreshTimeout,
	})
}
