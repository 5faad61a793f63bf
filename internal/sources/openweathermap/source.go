package openweathermap

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/units"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// ID identifies this source.
const ID = "openweathermap"

// Config holds configuration for the OpenWeatherMap source.
type Config struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to DefaultBaseURL).
	BaseURL string

	// Units is the unit system requested from the API: "metric" (default)
	// or "imperial".
	Units string

	// Language of condition descriptions (optional).
	Language string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// Source is the OpenWeatherMap weather source.
type Source struct {
	api    *API
	system units.System
	logger zerolog.Logger
}

// New creates a new OpenWeatherMap source.
func New(cfg Config) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.DefaultClientConfig(ID))
	}
	system := units.ParseSystem(cfg.Units)

	return &Source{
		api: &API{
			client:  cfg.HTTPClient,
			baseURL: cfg.BaseURL,
			apiKey:  cfg.APIKey,
			units:   system.String(),
			lang:    cfg.Language,
		},
		system: system,
		logger: cfg.Logger.With().Str("source", ID).Logger(),
	}
}

func (s *Source) ID() string   { return ID }
func (s *Source) Name() string { return "OpenWeatherMap" }

func (s *Source) SupportedFeatures() []weather.Feature {
	return []weather.Feature{
		weather.FeatureCurrent,
		weather.FeatureAirQuality,
		weather.FeatureMinutely,
		weather.FeatureAlert,
	}
}

func (s *Source) SecondaryFeatures() []weather.Feature {
	return []weather.Feature{
		weather.FeatureAirQuality,
		weather.FeatureMinutely,
		weather.FeatureAlert,
	}
}

// RequestWeather fetches the One Call forecast and, when requested, the air
// pollution forecast in parallel.
func (s *Source) RequestWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	if s.api.apiKey == "" {
		return nil, weather.ErrMissingAPIKey
	}
	features = features.Intersect(s.SupportedFeatures())

	var (
		oneCall   *OneCallResponse
		pollution *AirPollutionResponse
	)

	j := weather.NewJoin(ctx, s.logger)
	weather.Primary(j, &oneCall, func(ctx context.Context) (*OneCallResponse, error) {
		return s.api.OneCall(ctx, loc.Latitude, loc.Longitude, excluded(features, true))
	})
	weather.Secondary(j, weather.FeatureAirQuality, features.Has(weather.FeatureAirQuality), &pollution,
		func(ctx context.Context) (*AirPollutionResponse, error) {
			return s.api.AirPollutionForecast(ctx, loc.Latitude, loc.Longitude)
		})
	if err := j.Wait(); err != nil {
		return nil, err
	}

	return convert(oneCall, pollution, features, s.system, loc.TZ())
}

// RequestSecondaryWeather fetches only the requested secondary features.
func (s *Source) RequestSecondaryWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	if s.api.apiKey == "" {
		return nil, weather.ErrMissingAPIKey
	}
	features = features.Intersect(s.SecondaryFeatures())
	needsOneCall := features.Has(weather.FeatureMinutely) || features.Has(weather.FeatureAlert)

	var (
		oneCall   *OneCallResponse
		pollution *AirPollutionResponse
	)

	j := weather.NewJoin(ctx, s.logger)
	weather.Secondary(j, weather.FeatureAlert, needsOneCall, &oneCall, func(ctx context.Context) (*OneCallResponse, error) {
		return s.api.OneCall(ctx, loc.Latitude, loc.Longitude, excluded(features, false))
	})
	weather.Secondary(j, weather.FeatureAirQuality, features.Has(weather.FeatureAirQuality), &pollution,
		func(ctx context.Context) (*AirPollutionResponse, error) {
			return s.api.AirPollutionForecast(ctx, loc.Latitude, loc.Longitude)
		})
	if err := j.Wait(); err != nil {
		return nil, err
	}

	return convertSecondary(oneCall, pollution, features), nil
}

// excluded lists the One Call sections not needed for features.
func excluded(features weather.Features, forecast bool) []string {
	var out []string
	if !forecast {
		out = append(out, "hourly", "daily")
	}
	if !forecast || !features.Has(weather.FeatureCurrent) {
		out = append(out, "current")
	}
	if !features.Has(weather.FeatureMinutely) {
		out = append(out, "minutely")
	}
	if !features.Has(weather.FeatureAlert) {
		out = append(out, "alerts")
	}
	return out
}
