// Package openmeteo implements the Open-Meteo source. The forecast API gives
// current conditions, hourly and daily forecasts and a 15-minute nowcast;
// the air quality API gives pollutants and European pollen.
package openmeteo

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

const (
	DefaultForecastURL   = "https://api.open-meteo.com/v1/forecast"
	DefaultAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
)

var (
	currentVariables = []string{
		"temperature_2m", "relative_humidity_2m", "dew_point_2m", "apparent_temperature",
		"weather_code", "cloud_cover", "pressure_msl", "visibility",
		"wind_speed_10m", "wind_direction_10m", "wind_gusts_10m", "uv_index",
	}
	hourlyVariables = []string{
		"temperature_2m", "relative_humidity_2m", "dew_point_2m", "apparent_temperature",
		"precipitation_probability", "precipitation", "rain", "showers", "snowfall",
		"weather_code", "pressure_msl", "cloud_cover", "visibility",
		"wind_speed_10m", "wind_direction_10m", "wind_gusts_10m", "uv_index", "is_day",
	}
	dailyVariables = []string{
		"sunrise", "sunset", "uv_index_max", "sunshine_duration", "precipitation_hours",
	}
	airQualityVariables = []string{
		"pm10", "pm2_5", "carbon_monoxide", "nitrogen_dioxide", "sulphur_dioxide", "ozone",
	}
	pollenVariables = []string{
		"alder_pollen", "birch_pollen", "grass_pollen", "mugwort_pollen", "olive_pollen", "ragweed_pollen",
	}
)

// API declares the Open-Meteo endpoints. Open-Meteo needs no key.
type API struct {
	client        *resilience.Client
	forecastURL   string
	airQualityURL string
}

func coordinates(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("timeformat", "unixtime")
	return q
}

// Forecast fetches the forecast with speeds in m/s. current and minutely add
// the current conditions and the 15-minute nowcast.
func (a *API) Forecast(ctx context.Context, lat, lon float64, timezone string, days int, current, minutely bool) (*ForecastResponse, error) {
	q := coordinates(lat, lon)
	q.Set("timezone", timezone)
	q.Set("forecast_days", strconv.Itoa(days))
	q.Set("wind_speed_unit", "ms")
	q.Set("hourly", strings.Join(hourlyVariables, ","))
	q.Set("daily", strings.Join(dailyVariables, ","))
	if current {
		q.Set("current", strings.Join(currentVariables, ","))
	}
	if minutely {
		q.Set("minutely_15", "precipitation")
	}

	var resp ForecastResponse
	if err := a.client.FetchJSON(ctx, a.forecastURL, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AirQuality fetches the hourly pollutant and/or pollen forecast.
func (a *API) AirQuality(ctx context.Context, lat, lon float64, days int, pollutants, pollen bool) (*AirQualityResponse, error) {
	var vars []string
	if pollutants {
		vars = append(vars, airQualityVariables...)
	}
	if pollen {
		vars = append(vars, pollenVariables...)
	}

	q := coordinates(lat, lon)
	q.Set("forecast_days", strconv.Itoa(min(days, 7)))
	q.Set("hourly", strings.Join(vars, ","))

	var resp AirQualityResponse
	if err := a.client.FetchJSON(ctx, a.airQualityURL, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
