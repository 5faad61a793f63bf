// Package config loads process configuration from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/database"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds the configuration shared by the API server and the worker.
type Config struct {
	Env  string `validate:"required"`
	Port string `validate:"required,numeric"`

	// LogLevel filters process logs. Parsed from LOG_LEVEL, default info.
	LogLevel zerolog.Level

	StoreDriver string `validate:"oneof=memory postgres sqlite"`
	Postgres    database.Config
	SQLite      database.SQLiteConfig

	Sources SourcesConfig

	// JWTSigningKey signs and verifies admin tokens.
	JWTSigningKey string `validate:"required,min=16"`

	// JWTPreviousSigningKey keeps tokens signed before a rotation valid.
	JWTPreviousSigningKey string `validate:"omitempty,min=16"`

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool

	RateLimits RateLimitConfig

	Telemetry TelemetryConfig
	Weather   WeatherConfig
	Worker    WorkerConfig
}

// SourcesConfig holds vendor credentials. Sources without a key are still
// registered and fail with a missing key error when used.
type SourcesConfig struct {
	OpenWeatherMapAPIKey string
	AccuWeatherAPIKey    string
	MeteoFranceAPIKey    string
	AzureMapsAPIKey      string
	AmbeeAPIKey          string

	// MetNoUserAgent identifies this service to MET Norway, which rejects
	// anonymous clients.
	MetNoUserAgent string

	// Language is passed to vendors that localize text.
	Language string `validate:"omitempty,min=2"`

	// RateLimit caps requests per second per source, 0 disables it.
	RateLimit float64 `validate:"gte=0"`
}

// RateLimitConfig holds per-minute request limits per client. Zero keeps
// the built-in default.
type RateLimitConfig struct {
	AuthPerMinute     int `validate:"gte=0"`
	WeatherPerMinute  int `validate:"gte=0"`
	StandardPerMinute int `validate:"gte=0"`
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string  `validate:"required_if=Enabled true"`
	Insecure     bool
	SampleRatio  float64 `validate:"gte=0,lte=1"`
}

// WeatherConfig tunes the weather service.
type WeatherConfig struct {
	CacheTTL        time.Duration `validate:"gt=0"`
	StaleIfErrorTTL time.Duration `validate:"gtefield=CacheTTL"`
	RefreshTimeout  time.Duration `validate:"gt=0"`
	DefaultSource   string        `validate:"required"`
}

// WorkerConfig configures scheduled and on-demand refreshes.
type WorkerConfig struct {
	RefreshInterval time.Duration `validate:"gte=1m"`
	SubscriptionID  string        `validate:"required_with=ProjectID"`
	ProjectID       string

	// MaxOutstandingMessages bounds concurrent on-demand refreshes.
	MaxOutstandingMessages int `validate:"gte=0,lte=1000"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Env:           getenv("APP_ENV", "development"),
		Port:          getenv("APP_PORT", "8080"),
		StoreDriver:   strings.ToLower(getenv("STORE_DRIVER", StoreMemory)),
		Postgres:      database.ConfigFromEnv(),
		SQLite:        database.SQLiteConfigFromEnv(),
		JWTSigningKey:         os.Getenv("JWT_SIGNING_KEY"),
		JWTPreviousSigningKey: os.Getenv("JWT_PREVIOUS_SIGNING_KEY"),
		RequireTLS:            os.Getenv("REQUIRE_TLS") == "true",
		Sources: SourcesConfig{
			OpenWeatherMapAPIKey: os.Getenv("OPENWEATHERMAP_API_KEY"),
			AccuWeatherAPIKey:    os.Getenv("ACCUWEATHER_API_KEY"),
			MeteoFranceAPIKey:    os.Getenv("METEOFRANCE_API_KEY"),
			AzureMapsAPIKey:      os.Getenv("AZUREMAPS_API_KEY"),
			AmbeeAPIKey:          os.Getenv("AMBEE_API_KEY"),
			MetNoUserAgent:       getenv("METNO_USER_AGENT", "nimbus/dev github.com/nimbusweather/nimbus"),
			Language:             getenv("SOURCE_LANGUAGE", "en"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      os.Getenv("OTEL_ENABLED") == "true",
			OTLPEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:     os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") != "false",
		},
		Worker: WorkerConfig{
			ProjectID:      os.Getenv("PUBSUB_PROJECT_ID"),
			SubscriptionID: os.Getenv("PUBSUB_SUBSCRIPTION_ID"),
		},
	}
	if cfg.Env == "development" && cfg.JWTSigningKey == "" {
		cfg.JWTSigningKey = "local-dev-signing-key-change-in-production"
	}

	var err error
	if cfg.Sources.RateLimit, err = getFloat("SOURCE_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.Telemetry.SampleRatio, err = getFloat("OTEL_TRACES_SAMPLER_ARG", 1); err != nil {
		return nil, err
	}
	if cfg.RateLimits.AuthPerMinute, err = getInt("RATE_LIMIT_AUTH_PER_MINUTE", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimits.WeatherPerMinute, err = getInt("RATE_LIMIT_WEATHER_PER_MINUTE", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimits.StandardPerMinute, err = getInt("RATE_LIMIT_STANDARD_PER_MINUTE", 0); err != nil {
		return nil, err
	}
	if cfg.Weather.CacheTTL, err = getDuration("WEATHER_CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Weather.StaleIfErrorTTL, err = getDuration("WEATHER_STALE_IF_ERROR_TTL", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Weather.RefreshTimeout, err = getDuration("WEATHER_REFRESH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	cfg.Weather.DefaultSource = getenv("WEATHER_DEFAULT_SOURCE", "openmeteo")
	if cfg.Worker.RefreshInterval, err = getDuration("REFRESH_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.Worker.MaxOutstandingMessages, err = getInt("PUBSUB_MAX_OUTSTANDING_MESSAGES", 10); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = zerolog.ParseLevel(strings.ToLower(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
