package azuremaps

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// ID identifies this source.
const ID = "azuremaps"

// Config holds configuration for the Azure Maps source.
type Config struct {
	// SubscriptionKey is the Azure Maps key (required).
	SubscriptionKey string

	BaseURL  string
	Language string

	// Days and Hours size the daily and hourly forecasts (defaults 10
	// and 72).
	Days  int
	Hours int

	HTTPClient *resilience.Client
	Logger     zerolog.Logger
}

type Source struct {
	api    *API
	days   int
	hours  int
	logger zerolog.Logger
}

// New creates a new Azure Maps source.
func New(cfg Config) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Days <= 0 {
		cfg.Days = 10
	}
	if cfg.Hours <= 0 {
		cfg.Hours = 72
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.DefaultClientConfig(ID))
	}

	return &Source{
		api: &API{
			client:   cfg.HTTPClient,
			baseURL:  cfg.BaseURL,
			apiKey:   cfg.SubscriptionKey,
			language: cfg.Language,
		},
		days:   cfg.Days,
		hours:  cfg.Hours,
		logger: cfg.Logger.With().Str("source", ID).Logger(),
	}
}

func (s *Source) ID() string   { return ID }
func (s *Source) Name() string { return "Azure Maps" }

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

// RequestWeather fetches the daily and hourly forecasts as the primary
// calls, with one call per optional feature.
func (s *Source) RequestWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	if s.api.apiKey == "" {
		return nil, fmt.Errorf("%w: %s", weather.ErrMissingAPIKey, ID)
	}
	features = features.Intersect(s.SupportedFeatures())

	var in inputs
	j := weather.NewJoin(ctx, s.logger)
	weather.Primary(j, &in.daily, func(ctx context.Context) (*DailyResponse, error) {
		return s.api.DailyForecast(ctx, loc.Latitude, loc.Longitude, s.days)
	})
	weather.Primary(j, &in.hourly, func(ctx context.Context) (*HourlyResponse, error) {
		return s.api.HourlyForecast(ctx, loc.Latitude, loc.Longitude, s.hours)
	})
	if features.Has(weather.FeatureCurrent) {
		weather.Primary(j, &in.current, func(ctx context.Context) (*CurrentResponse, error) {
			return s.api.CurrentConditions(ctx, loc.Latitude, loc.Longitude)
		})
	}
	s.optional(j, loc, features, &in)
	if err := j.Wait(); err != nil {
		return nil, err
	}

	return convert(in, features, loc.TZ())
}

// RequestSecondaryWeather fetches only the requested secondary features.
func (s *Source) RequestSecondaryWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	if s.api.apiKey == "" {
		return nil, fmt.Errorf("%w: %s", weather.ErrMissingAPIKey, ID)
	}
	features = features.Intersect(s.SecondaryFeatures())

	var in inputs
	j := weather.NewJoin(ctx, s.logger)
	s.optional(j, loc, features, &in)
	if err := j.Wait(); err != nil {
		return nil, err
	}
	return convertSecondary(in, features), nil
}

func (s *Source) optional(j *weather.Join, loc *weather.Location, features weather.Features, in *inputs) {
	weather.Secondary(j, weather.FeatureMinutely, features.Has(weather.FeatureMinutely), &in.minute,
		func(ctx context.Context) (*MinuteResponse, error) {
			return s.api.MinuteForecast(ctx, loc.Latitude, loc.Longitude)
		})
	weather.Secondary(j, weather.FeatureAlert, features.Has(weather.FeatureAlert), &in.alerts,
		func(ctx context.Context) (*AlertsResponse, error) {
			return s.api.SevereAlerts(ctx, loc.Latitude, loc.Longitude)
		})
	weather.Secondary(j, weather.FeatureAirQuality, features.Has(weather.FeatureAirQuality), &in.airQuality,
		func(ctx context.Context) (*AirQualityResponse, error) {
			return s.api.AirQualityForecast(ctx, loc.Latitude, loc.Longitude, min(s.hours, 96))
		})
}
