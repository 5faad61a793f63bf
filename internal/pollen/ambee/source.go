package ambee

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// Config holds configuration for the Ambee source.
type Config struct {
	// APIKey is the Ambee API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to Ambee API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

type Source struct {
	client *Client
	now    func() time.Time
	logger zerolog.Logger
}

// New creates a new Ambee source.
func New(cfg Config) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Source{
		client: &Client{
			apiKey:     cfg.APIKey,
			baseURL:    cfg.BaseURL,
			httpClient: cfg.HTTPClient,
		},
		now:    time.Now,
		logger: cfg.Logger.With().Str("source", ProviderName).Logger(),
	}
}

func (s *Source) ID() string   { return ProviderName }
func (s *Source) Name() string { return "Ambee" }

func (s *Source) SecondaryFeatures() []weather.Feature {
	return []weather.Feature{weather.FeaturePollen}
}

// RequestSecondaryWeather fetches the pollen forecast and the latest counts
// in parallel. Latest counts only count towards today.
func (s *Source) RequestSecondaryWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	if !features.Has(weather.FeaturePollen) {
		return &weather.Wrapper{}, nil
	}
	if s.client.apiKey == "" {
		return nil, fmt.Errorf("%w: %s", weather.ErrMissingAPIKey, ProviderName)
	}

	var forecast, latest *pollenResponse
	j := weather.NewJoin(ctx, s.logger)
	weather.Primary(j, &forecast, func(ctx context.Context) (*pollenResponse, error) {
		return s.client.Forecast(ctx, loc.Latitude, loc.Longitude)
	})
	weather.Secondary(j, weather.FeaturePollen, true, &latest, func(ctx context.Context) (*pollenResponse, error) {
		return s.client.Latest(ctx, loc.Latitude, loc.Longitude)
	})
	if err := j.Wait(); err != nil {
		return nil, err
	}

	entries := forecast.Data
	if latest != nil {
		entries = append(entries, latest.Data...)
	}
	return convert(entries, loc.TZ(), s.now()), nil
}
