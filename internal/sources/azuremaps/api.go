// Package azuremaps implements the Microsoft Azure Maps weather source.
// Every measurement is a tagged value carrying its unit type code.
package azuremaps

import (
	"context"
	"net/url"
	"strconv"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

const (
	DefaultBaseURL = "https://atlas.microsoft.com"
	apiVersion     = "1.1"
)

// API declares the Azure Maps weather endpoints.
type API struct {
	client   *resilience.Client
	baseURL  string
	apiKey   string
	language string
}

func (a *API) query(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("api-version", apiVersion)
	q.Set("subscription-key", a.apiKey)
	q.Set("query", strconv.FormatFloat(lat, 'f', 4, 64)+","+strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("unit", "metric")
	if a.language != "" {
		q.Set("language", a.language)
	}
	return q
}

func (a *API) CurrentConditions(ctx context.Context, lat, lon float64) (*CurrentResponse, error) {
	q := a.query(lat, lon)
	q.Set("details", "true")

	var resp CurrentResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/weather/currentConditions/json", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) DailyForecast(ctx context.Context, lat, lon float64, days int) (*DailyResponse, error) {
	q := a.query(lat, lon)
	q.Set("duration", strconv.Itoa(days))

	var resp DailyResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/weather/forecast/daily/json", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) HourlyForecast(ctx context.Context, lat, lon float64, hours int) (*HourlyResponse, error) {
	q := a.query(lat, lon)
	q.Set("duration", strconv.Itoa(hours))

	var resp HourlyResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/weather/forecast/hourly/json", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) MinuteForecast(ctx context.Context, lat, lon float64) (*MinuteResponse, error) {
	q := a.query(lat, lon)
	q.Set("interval", "1")

	var resp MinuteResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/weather/forecast/minute/json", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) SevereAlerts(ctx context.Context, lat, lon float64) (*AlertsResponse, error) {
	q := a.query(lat, lon)
	q.Set("details", "true")

	var resp AlertsResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/weather/severe/alerts/json", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) AirQualityForecast(ctx context.Context, lat, lon float64, hours int) (*AirQualityResponse, error) {
	q := a.query(lat, lon)
	q.Set("duration", strconv.Itoa(hours))

	var resp AirQualityResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/weather/airQuality/forecasts/hourly/json", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
