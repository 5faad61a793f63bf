package openmeteo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// ID identifies this source.
const ID = "openmeteo"

// Config holds configuration for the Open-Meteo source.
type Config struct {
	ForecastURL   string
	AirQualityURL string

	// Days is the forecast length in days (default 7).
	Days int

	HTTPClient *resilience.Client
	Logger     zerolog.Logger
}

type Source struct {
	api    *API
	days   int
	logger zerolog.Logger
}

// New creates a new Open-Meteo source.
func New(cfg Config) *Source {
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	if cfg.AirQualityURL == "" {
		cfg.AirQualityURL = DefaultAirQualityURL
	}
	if cfg.Days <= 0 {
		cfg.Days = 7
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.DefaultClientConfig(ID))
	}

	return &Source{
		api: &API{
			client:        cfg.HTTPClient,
			forecastURL:   cfg.ForecastURL,
			airQualityURL: cfg.AirQualityURL,
		},
		days:   cfg.Days,
		logger: cfg.Logger.With().Str("source", ID).Logger(),
	}
}

func (s *Source) ID() string   { return ID }
func (s *Source) Name() string { return "Open-Meteo" }

func (s *Source) SupportedFeatures() []weather.Feature {
	return []weather.Feature{
		weather.FeatureCurrent,
		weather.FeatureAirQuality,
		weather.FeaturePollen,
		weather.FeatureMinutely,
	}
}

func (s *Source) SecondaryFeatures() []weather.Feature {
	return []weather.Feature{
		weather.FeatureAirQuality,
		weather.FeaturePollen,
	}
}

// RequestWeather fetches the forecast and, when air quality or pollen is
// requested, the air quality forecast in parallel.
func (s *Source) RequestWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	features = features.Intersect(s.SupportedFeatures())
	withAQ := features.Has(weather.FeatureAirQuality)
	withPollen := features.Has(weather.FeaturePollen)

	var (
		forecast   *ForecastResponse
		airQuality *AirQualityResponse
	)

	j := weather.NewJoin(ctx, s.logger)
	weather.Primary(j, &forecast, func(ctx context.Context) (*ForecastResponse, error) {
		return s.api.Forecast(ctx, loc.Latitude, loc.Longitude, timezone(loc), s.days,
			features.Has(weather.FeatureCurrent), features.Has(weather.FeatureMinutely))
	})
	weather.Secondary(j, weather.FeatureAirQuality, withAQ || withPollen, &airQuality,
		func(ctx context.Context) (*AirQualityResponse, error) {
			return s.api.AirQuality(ctx, loc.Latitude, loc.Longitude, s.days, withAQ, withPollen)
		})
	if err := j.Wait(); err != nil {
		return nil, err
	}

	return convert(forecast, airQuality, features, loc.TZ())
}

// RequestSecondaryWeather fetches air quality and pollen only.
func (s *Source) RequestSecondaryWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	features = features.Intersect(s.SecondaryFeatures())
	withAQ := features.Has(weather.FeatureAirQuality)
	withPollen := features.Has(weather.FeaturePollen)
	if !withAQ && !withPollen {
		return &weather.Wrapper{}, nil
	}

	resp, err := s.api.AirQuality(ctx, loc.Latitude, loc.Longitude, s.days, withAQ, withPollen)
	if err != nil {
		return nil, err
	}
	return convertSecondary(resp, features, loc.TZ()), nil
}

func timezone(loc *weather.Location) string {
	if loc.TimeZone == "" {
		return "auto"
	}
	return loc.TimeZone
}
