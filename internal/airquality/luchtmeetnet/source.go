package luchtmeetnet

import (
	"context"
	"errors"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// Source serves interpolated network measurements as current air quality.
// It has no forecast and is only usable as a secondary source.
type Source struct {
	service *airquality.Service
}

// NewSource wraps a station network service.
func NewSource(service *airquality.Service) *Source {
	return &Source{service: service}
}

func (s *Source) ID() string   { return ProviderName }
func (s *Source) Name() string { return "Luchtmeetnet" }

func (s *Source) SecondaryFeatures() []weather.Feature {
	return []weather.Feature{weather.FeatureAirQuality}
}

// RequestSecondaryWeather estimates current air quality at the location.
// Locations outside the network get an empty result.
func (s *Source) RequestSecondaryWeather(ctx context.Context, loc *weather.Location, features weather.Features) (*weather.Wrapper, error) {
	if !features.Has(weather.FeatureAirQuality) {
		return &weather.Wrapper{}, nil
	}

	est, err := s.service.AirQualityAt(ctx, loc.Latitude, loc.Longitude)
	if errors.Is(err, airquality.ErrNoStationsInRange) || errors.Is(err, airquality.ErrInsufficientData) {
		return &weather.Wrapper{}, nil
	}
	if err != nil {
		return nil, err
	}

	aq := est.AirQuality
	return &weather.Wrapper{Current: &weather.Current{AirQuality: &aq}}, nil
}
