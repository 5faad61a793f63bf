// Package accuweather implements the AccuWeather source. Every request is
// keyed by an AccuWeather location key resolved once per location.
package accuweather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

const DefaultBaseURL = "https://api.accuweather.com"

// API declares the AccuWeather endpoints.
type API struct {
	client   *resilience.Client
	baseURL  string
	apiKey   string
	language string
}

func (a *API) query(details bool) url.Values {
	q := url.Values{}
	q.Set("apikey", a.apiKey)
	if a.language != "" {
		q.Set("language", a.language)
	}
	if details {
		q.Set("details", "true")
	}
	return q
}

func position(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 4, 64) + "," + strconv.FormatFloat(lon, 'f', 4, 64)
}

// GeopositionSearch resolves the location key of the nearest city.
func (a *API) GeopositionSearch(ctx context.Context, lat, lon float64) (*LocationResponse, error) {
	q := a.query(false)
	q.Set("q", position(lat, lon))

	var resp LocationResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/locations/v1/cities/geoposition/search", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) CurrentConditions(ctx context.Context, key string) ([]CurrentConditions, error) {
	var resp []CurrentConditions
	if err := a.client.FetchJSON(ctx, a.baseURL+"/currentconditions/v1/"+url.PathEscape(key), a.query(true), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (a *API) DailyForecast(ctx context.Context, key string, days int) (*DailyForecastResponse, error) {
	q := a.query(true)
	q.Set("metric", "true")

	var resp DailyForecastResponse
	endpoint := fmt.Sprintf("%s/forecasts/v1/daily/%dday/%s", a.baseURL, days, url.PathEscape(key))
	if err := a.client.FetchJSON(ctx, endpoint, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) HourlyForecast(ctx context.Context, key string, hours int) ([]HourlyForecast, error) {
	q := a.query(true)
	q.Set("metric", "true")

	var resp []HourlyForecast
	endpoint := fmt.Sprintf("%s/forecasts/v1/hourly/%dhour/%s", a.baseURL, hours, url.PathEscape(key))
	if err := a.client.FetchJSON(ctx, endpoint, q, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// MinuteCast is queried by coordinates, not by location key.
func (a *API) MinuteCast(ctx context.Context, lat, lon float64) (*MinuteCastResponse, error) {
	q := a.query(false)
	q.Set("q", position(lat, lon))

	var resp MinuteCastResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/forecasts/v1/minute", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Alerts never returns a nil slice on success: no alerts is an explicit
// empty answer.
func (a *API) Alerts(ctx context.Context, key string) ([]AlertResponse, error) {
	var resp []AlertResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/alerts/v1/"+url.PathEscape(key), a.query(true), &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []AlertResponse{}
	}
	return resp, nil
}

func (a *API) AirQualityForecast(ctx context.Context, key string) (*AirQualityResponse, error) {
	q := a.query(false)
	q.Set("pollutants", "true")

	var resp AirQualityResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/airquality/v2/forecasts/hourly/72hour/"+url.PathEscape(key), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClimoSummary fetches the climatology of a month, including its normals.
func (a *API) ClimoSummary(ctx context.Context, key string, year, month int) (*ClimoResponse, error) {
	var resp ClimoResponse
	endpoint := fmt.Sprintf("%s/climo/v1/summary/%d/%02d/%s", a.baseURL, year, month, url.PathEscape(key))
	if err := a.client.FetchJSON(ctx, endpoint, a.query(false), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
