// Package ambee implements the Ambee pollen source. Ambee reports counts
// per pollen group and per species; it is only usable as a secondary
// source.
package ambee

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

const (
	// ProviderName identifies this pollen provider.
	ProviderName = "ambee"

	// DefaultBaseURL is the Ambee API base URL.
	DefaultBaseURL = "https://api.ambeedata.com"
)

// Client is an Ambee API client for pollen data.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
}

func (c *Client) fetch(ctx context.Context, path string, lat, lon float64) (*pollenResponse, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lng", strconv.FormatFloat(lon, 'f', 6, 64))

	header := http.Header{}
	header.Set("x-api-key", c.apiKey)

	var resp pollenResponse
	if err := c.httpClient.FetchJSONWithHeader(ctx, c.baseURL+path, q, header, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Latest fetches the latest pollen counts for a location.
func (c *Client) Latest(ctx context.Context, lat, lon float64) (*pollenResponse, error) {
	return c.fetch(ctx, "/latest/pollen/by-lat-lng", lat, lon)
}

// Forecast fetches the hourly pollen forecast for a location.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*pollenResponse, error) {
	return c.fetch(ctx, "/forecast/pollen/by-lat-lng", lat, lon)
}

// Ambee API response structures.

type pollenResponse struct {
	Message string       `json:"message"`
	Data    []pollenData `json:"data"`
}

type pollenData struct {
	Count struct {
		GrassPollen *float64 `json:"grass_pollen"`
		TreePollen  *float64 `json:"tree_pollen"`
		WeedPollen  *float64 `json:"weed_pollen"`
	} `json:"Count"`

	// Species maps the group name to the count of each species.
	Species map[string]map[string]*float64 `json:"Species"`

	UpdatedAt string `json:"updatedAt"`

	// Time is the unix time of a forecast entry.
	Time int64 `json:"time"`
}
