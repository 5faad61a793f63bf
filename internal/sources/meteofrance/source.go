package meteofrance

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/weather"
)

const (
	// ID identifies this source.
	ID = "meteofrance"

	// ParamDepartment is an optional location parameter holding the French
	// department warnings are published for. When absent the department is
	// taken from the forecast position.
	ParamDepartment = "department"
)

// Config holds configuration for the Météo-France source.
type Config struct {
	// APIKey is the Météo-France token (required).
	APIKey string

	BaseURL  string
	Language string

	HTTPClient *resilience.Client
	Logger     zerolog.Logger
}

type Source struct {
	api    *API
	now    func() time.Time
	logger zerolog.Logger
}

// New creates a new Météo-France source.
func New(cfg Config) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.DefaultClientConfig(ID))
	}

	return &Source{
		api: &API{
			client:   cfg.HTTPClient,
			baseURL:  cfg.BaseURL,
			token:    cfg.APIKey,
			language: cfg.Language,
		},
		now:    time.Now,
		logger: cfg.Logger.With().Str("source", ID).Logger(),
	}
}

func (s *Source) ID() string   { return ID }
func (s *Source) Name() string { return "Météo-France" }

func (s *Source) SupportedFeatures() []weather.Feature {
	return []weather.Feature{
		weather.FeatureCurrent,
		weather.FeatureMinutely,
		weather.FeatureAlert,
		weather.FeatureNormals,
	}
}

func (s *Source) SecondaryFeatures() []weather.Feature {
	return []weather.Feature{
		weather.FeatureMinutely,
		weather.FeatureAlert,
		weather.FeatureNormals,
	}
}

// department returns the stored department and whether one was recorded.
func department(loc *weather.Location) (string, bool) {
	d, ok := loc.Parameters[ID][ParamDepartment]
	return d, ok
}

// RequestWeather fetches the forecast as the primary call. Without a stored
// department, warnings wait for the forecast position.
func (s *Source) RequestWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	if s.api.token == "" {
		return nil, weather.ErrMissingAPIKey
	}
	features = features.Intersect(s.SupportedFeatures())
	dept, known := department(loc)

	in := inputs{month: s.now().In(loc.TZ()).Month()}
	j := weather.NewJoin(ctx, s.logger)
	weather.Primary(j, &in.forecast, func(ctx context.Context) (*ForecastResponse, error) {
		return s.api.Forecast(ctx, loc.Latitude, loc.Longitude)
	})
	s.optional(j, loc, features, &in)
	if known {
		s.warnings(j, features, dept, &in)
	}
	if err := j.Wait(); err != nil {
		return nil, err
	}

	if !known && in.forecast != nil {
		j := weather.NewJoin(ctx, s.logger)
		s.warnings(j, features, in.forecast.Position.Dept, &in)
		_ = j.Wait()
	}

	return convert(in, features, loc.TZ())
}

// RequestSecondaryWeather fetches the nowcast, warnings and normals. Without
// a stored department, warnings need a forecast lookup; a failed lookup
// means no warnings.
func (s *Source) RequestSecondaryWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	if s.api.token == "" {
		return nil, weather.ErrMissingAPIKey
	}
	features = features.Intersect(s.SecondaryFeatures())

	dept, known := department(loc)
	if !known && features.Has(weather.FeatureAlert) {
		dept = s.lookupDepartment(ctx, loc)
	}

	in := inputs{month: s.now().In(loc.TZ()).Month()}
	j := weather.NewJoin(ctx, s.logger)
	s.optional(j, loc, features, &in)
	s.warnings(j, features, dept, &in)
	if err := j.Wait(); err != nil {
		return nil, err
	}

	return convertSecondary(in, features), nil
}

func (s *Source) lookupDepartment(ctx context.Context, loc *weather.Location) string {
	resp, err := s.api.Forecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Str("location_id", loc.ID).Msg("department lookup failed")
		}
		return ""
	}
	return resp.Position.Dept
}

// warnings schedules the warnings call. They are only published for French
// departments.
func (s *Source) warnings(j *weather.Join, features weather.Features, dept string, in *inputs) {
	weather.Secondary(j, weather.FeatureAlert, features.Has(weather.FeatureAlert) && dept != "", &in.warnings,
		func(ctx context.Context) (*WarningsResponse, error) {
			return s.api.Warnings(ctx, dept)
		})
}

// optional schedules the nowcast and normals calls.
func (s *Source) optional(j *weather.Join, loc *weather.Location, features weather.Features, in *inputs) {
	lat, lon := loc.Latitude, loc.Longitude

	weather.Secondary(j, weather.FeatureMinutely, features.Has(weather.FeatureMinutely), &in.rain,
		func(ctx context.Context) (*RainResponse, error) {
			return s.api.Rain(ctx, lat, lon)
		})
	weather.Secondary(j, weather.FeatureNormals, features.Has(weather.FeatureNormals), &in.normals,
		func(ctx context.Context) (*NormalsResponse, error) {
			return s.api.Normals(ctx, lat, lon)
		})
}
