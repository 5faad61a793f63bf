// Package openweathermap implements the OpenWeatherMap source: One Call 3.0
// for the forecast, minutely precipitation and alerts, and the air pollution
// forecast for air quality.
package openweathermap

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

// DefaultBaseURL is the OpenWeatherMap API base URL.
const DefaultBaseURL = "https://api.openweathermap.org"

// API declares the OpenWeatherMap endpoints.
type API struct {
	client  *resilience.Client
	baseURL string
	apiKey  string
	units   string
	lang    string
}

func (a *API) query(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("appid", a.apiKey)
	return q
}

// OneCall fetches /data/3.0/onecall. Sections listed in exclude are left
// out of the response.
func (a *API) OneCall(ctx context.Context, lat, lon float64, exclude []string) (*OneCallResponse, error) {
	q := a.query(lat, lon)
	q.Set("units", a.units)
	if a.lang != "" {
		q.Set("lang", a.lang)
	}
	if len(exclude) > 0 {
		q.Set("exclude", strings.Join(exclude, ","))
	}

	var resp OneCallResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/data/3.0/onecall", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AirPollutionForecast fetches /data/2.5/air_pollution/forecast.
func (a *API) AirPollutionForecast(ctx context.Context, lat, lon float64) (*AirPollutionResponse, error) {
	var resp AirPollutionResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/data/2.5/air_pollution/forecast", a.query(lat, lon), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
