package accuweather

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/weather"
)

const (
	// ID identifies this source.
	ID = "accuweather"

	// ParamLocationKey is the location parameter holding the resolved
	// AccuWeather location key.
	ParamLocationKey = "locationKey"
)

// Config holds configuration for the AccuWeather source.
type Config struct {
	// APIKey is the AccuWeather API key (required).
	APIKey string

	BaseURL  string
	Language string

	// Days and Hours size the daily and hourly forecasts (defaults 15 and
	// 72). They must be lengths AccuWeather publishes.
	Days  int
	Hours int

	HTTPClient *resilience.Client
	Logger     zerolog.Logger
}

type Source struct {
	api    *API
	days   int
	hours  int
	now    func() time.Time
	logger zerolog.Logger
}

// New creates a new AccuWeather source.
func New(cfg Config) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Days <= 0 {
		cfg.Days = 15
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
			apiKey:   cfg.APIKey,
			language: cfg.Language,
		},
		days:   cfg.Days,
		hours:  cfg.Hours,
		now:    time.Now,
		logger: cfg.Logger.With().Str("source", ID).Logger(),
	}
}

func (s *Source) ID() string   { return ID }
func (s *Source) Name() string { return "AccuWeather" }

func (s *Source) SupportedFeatures() []weather.Feature {
	return weather.AllFeatures()
}

func (s *Source) SecondaryFeatures() []weather.Feature {
	return []weather.Feature{
		weather.FeatureAirQuality,
		weather.FeaturePollen,
		weather.FeatureMinutely,
		weather.FeatureAlert,
		weather.FeatureNormals,
	}
}

func (s *Source) NeedsLocationParameters(loc *weather.Location) bool {
	return loc.Parameter(ID, ParamLocationKey) == ""
}

// RequestLocationParameters resolves the location key of the nearest city.
func (s *Source) RequestLocationParameters(ctx context.Context, loc *weather.Location) (map[string]string, error) {
	if s.api.apiKey == "" {
		return nil, weather.ErrMissingAPIKey
	}
	resp, err := s.api.GeopositionSearch(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, err
	}
	if resp.Key == "" {
		return nil, fmt.Errorf("%w: no accuweather location near %.4f,%.4f",
			weather.ErrInvalidLocation, loc.Latitude, loc.Longitude)
	}

	s.logger.Debug().
		Str("location_id", loc.ID).
		Str("location_key", resp.Key).
		Msg("resolved location key")

	return map[string]string{ParamLocationKey: resp.Key}, nil
}

func (s *Source) locationKey(loc *weather.Location) (string, error) {
	if s.api.apiKey == "" {
		return "", weather.ErrMissingAPIKey
	}
	key := loc.Parameter(ID, ParamLocationKey)
	if key == "" {
		return "", fmt.Errorf("%w: missing accuweather location key", weather.ErrInvalidLocation)
	}
	return key, nil
}

// RequestWeather fetches current conditions and the daily and hourly
// forecasts as the primary calls, with one call per optional feature.
func (s *Source) RequestWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	key, err := s.locationKey(loc)
	if err != nil {
		return nil, err
	}

	in := inputs{month: s.now().In(loc.TZ()).Month()}
	j := weather.NewJoin(ctx, s.logger)
	weather.Primary(j, &in.daily, func(ctx context.Context) (*DailyForecastResponse, error) {
		return s.api.DailyForecast(ctx, key, s.days)
	})
	weather.Primary(j, &in.hourly, func(ctx context.Context) ([]HourlyForecast, error) {
		return s.api.HourlyForecast(ctx, key, s.hours)
	})
	if features.Has(weather.FeatureCurrent) {
		weather.Primary(j, &in.current, func(ctx context.Context) ([]CurrentConditions, error) {
			return s.api.CurrentConditions(ctx, key)
		})
	}
	s.optional(j, loc, key, features, &in)
	if err := j.Wait(); err != nil {
		return nil, err
	}

	return convert(in, features, loc.TZ())
}

// RequestSecondaryWeather fetches only the requested secondary features.
// Pollen comes with the daily forecast.
func (s *Source) RequestSecondaryWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	key, err := s.locationKey(loc)
	if err != nil {
		return nil, err
	}
	features = features.Intersect(s.SecondaryFeatures())

	in := inputs{month: s.now().In(loc.TZ()).Month()}
	j := weather.NewJoin(ctx, s.logger)
	weather.Secondary(j, weather.FeaturePollen, features.Has(weather.FeaturePollen), &in.daily,
		func(ctx context.Context) (*DailyForecastResponse, error) {
			return s.api.DailyForecast(ctx, key, s.days)
		})
	s.optional(j, loc, key, features, &in)
	if err := j.Wait(); err != nil {
		return nil, err
	}

	return convertSecondary(in, features, loc.TZ()), nil
}

func (s *Source) optional(j *weather.Join, loc *weather.Location, key string, features weather.Features, in *inputs) {
	weather.Secondary(j, weather.FeatureMinutely, features.Has(weather.FeatureMinutely), &in.minuteCast,
		func(ctx context.Context) (*MinuteCastResponse, error) {
			return s.api.MinuteCast(ctx, loc.Latitude, loc.Longitude)
		})
	weather.Secondary(j, weather.FeatureAlert, features.Has(weather.FeatureAlert), &in.alerts,
		func(ctx context.Context) ([]AlertResponse, error) {
			return s.api.Alerts(ctx, key)
		})
	weather.Secondary(j, weather.FeatureAirQuality, features.Has(weather.FeatureAirQuality), &in.airQuality,
		func(ctx context.Context) (*AirQualityResponse, error) {
			return s.api.AirQualityForecast(ctx, key)
		})
	weather.Secondary(j, weather.FeatureNormals, features.Has(weather.FeatureNormals), &in.climo,
		func(ctx context.Context) (*ClimoResponse, error) {
			now := s.now().In(loc.TZ())
			return s.api.ClimoSummary(ctx, key, now.Year(), int(now.Month()))
		})
}
