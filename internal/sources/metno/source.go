package metno

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// ID identifies this source.
const ID = "metno"

// Config holds configuration for the MET Norway source.
type Config struct {
	BaseURL string

	// UserAgent identifies the application to MET Norway (required). It is
	// applied to the default client; a provided HTTPClient must set its own.
	UserAgent string

	HTTPClient *resilience.Client
	Logger     zerolog.Logger
}

type Source struct {
	api       *API
	userAgent string
	now       func() time.Time
	logger    zerolog.Logger
}

// New creates a new MET Norway source.
func New(cfg Config) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		clientCfg := resilience.DefaultClientConfig(ID)
		clientCfg.UserAgent = cfg.UserAgent
		cfg.HTTPClient = resilience.NewClient(clientCfg)
	}

	return &Source{
		api:       &API{client: cfg.HTTPClient, baseURL: cfg.BaseURL},
		userAgent: cfg.UserAgent,
		now:       time.Now,
		logger:    cfg.Logger.With().Str("source", ID).Logger(),
	}
}

func (s *Source) ID() string   { return ID }
func (s *Source) Name() string { return "MET Norway" }

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

func (s *Source) RequestWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	if s.userAgent == "" {
		return nil, weather.ErrMissingAPIKey
	}
	features = features.Intersect(s.SupportedFeatures())

	var in inputs
	j := weather.NewJoin(ctx, s.logger)
	weather.Primary(j, &in.forecast, func(ctx context.Context) (*ForecastResponse, error) {
		return s.api.LocationForecast(ctx, loc.Latitude, loc.Longitude)
	})
	s.optional(j, loc, features, &in)
	if err := j.Wait(); err != nil {
		return nil, err
	}

	return convert(in, features, loc.TZ(), s.now())
}

func (s *Source) RequestSecondaryWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	if s.userAgent == "" {
		return nil, weather.ErrMissingAPIKey
	}
	features = features.Intersect(s.SecondaryFeatures())

	var in inputs
	j := weather.NewJoin(ctx, s.logger)
	s.optional(j, loc, features, &in)
	if err := j.Wait(); err != nil {
		return nil, err
	}

	return convertSecondary(in, features, s.now()), nil
}

func (s *Source) optional(j *weather.Join, loc *weather.Location, features weather.Features, in *inputs) {
	lat, lon := loc.Latitude, loc.Longitude

	weather.Secondary(j, weather.FeatureMinutely, features.Has(weather.FeatureMinutely), &in.nowcast,
		func(ctx context.Context) (*ForecastResponse, error) {
			return s.api.Nowcast(ctx, lat, lon)
		})
	weather.Secondary(j, weather.FeatureAlert, features.Has(weather.FeatureAlert), &in.alerts,
		func(ctx context.Context) (*AlertsResponse, error) {
			return s.api.Alerts(ctx, lat, lon)
		})
	weather.Secondary(j, weather.FeatureAirQuality, features.Has(weather.FeatureAirQuality), &in.airQuality,
		func(ctx context.Context) (*AirQualityResponse, error) {
			return s.api.AirQuality(ctx, lat, lon)
		})
}
