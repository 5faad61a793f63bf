// Package meteofrance implements the Météo-France source: a worldwide
// forecast, a one-hour rain nowcast, French department warnings and
// climate normals.
package meteofrance

import (
	"context"
	"net/url"
	"strconv"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

const DefaultBaseURL = "https://webservice.meteofrance.com"

// API declares the Météo-France endpoints.
type API struct {
	client   *resilience.Client
	baseURL  string
	token    string
	language string
}

func (a *API) query() url.Values {
	q := url.Values{}
	q.Set("token", a.token)
	q.Set("formatDate", "timestamp")
	if a.language != "" {
		q.Set("lang", a.language)
	}
	return q
}

func (a *API) coordinates(lat, lon float64) url.Values {
	q := a.query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	return q
}

func (a *API) Forecast(ctx context.Context, lat, lon float64) (*ForecastResponse, error) {
	var resp ForecastResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/forecast", a.coordinates(lat, lon), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Rain fetches the rain nowcast for the next hour.
func (a *API) Rain(ctx context.Context, lat, lon float64) (*RainResponse, error) {
	var resp RainResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/v3/rain", a.coordinates(lat, lon), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Warnings fetches the current phenomenons of a French department.
func (a *API) Warnings(ctx context.Context, department string) (*WarningsResponse, error) {
	q := a.query()
	q.Set("domain", department)
	q.Set("depth", "1")
	q.Set("with_coast", "1")

	var resp WarningsResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/v3/warning/currentphenomenons", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *API) Normals(ctx context.Context, lat, lon float64) (*NormalsResponse, error) {
	var resp NormalsResponse
	if err := a.client.FetchJSON(ctx, a.baseURL+"/v2/climate/normals", a.coordinates(lat, lon), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
