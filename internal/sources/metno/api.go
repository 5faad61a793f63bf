// Package metno implements the MET Norway source. Locationforecast gives an
// hourly-only forecast; nowcast, metalerts and airqualityforecast provide
// the optional features for the Nordic area.
package metno

import (
	"context"
	"net/url"
	"strconv"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

const DefaultBaseURL = "https://api.met.no/weatherapi"

// API declares the MET Norway endpoints. MET Norway has no key but rejects
// requests without an identifying User-Agent.
type API struct {
	client  *resilience.Client
	baseURL string
}

func coordinates(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	return q
}

func (a *API) fetch(ctx context.Context, path string, lat, lon float64, target any) error {
	return a.client.FetchJSON(ctx, a.baseURL+path, coordinates(lat, lon), target)
}

func (a *API) LocationForecast(ctx context.Context, lat, lon float64) (*ForecastResponse, error) {
	var resp ForecastResponse
	if err := a.fetch(ctx, "/locationforecast/2.0/complete", lat, lon, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Nowcast fetches the 5-minute precipitation nowcast.
func (a *API) Nowcast(ctx context.Context, lat, lon float64) (*ForecastResponse, error) {
	var resp ForecastResponse
	if err := a.fetch(ctx, "/nowcast/2.0/complete", lat, lon, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) Alerts(ctx context.Context, lat, lon float64) (*AlertsResponse, error) {
	var resp AlertsResponse
	if err := a.fetch(ctx, "/metalerts/2.0/current.json", lat, lon, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) AirQuality(ctx context.Context, lat, lon float64) (*AirQualityResponse, error) {
	var resp AirQualityResponse
	if err := a.fetch(ctx, "/airqualityforecast/0.1/", lat, lon, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
