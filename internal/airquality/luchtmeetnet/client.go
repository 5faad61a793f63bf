// Package luchtmeetnet reads the Dutch national air quality measurement
// network and serves it as a secondary air quality source.
package luchtmeetnet

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the Luchtmeetnet API.
	DefaultBaseURL = "https://api.luchtmeetnet.nl/open_api"

	// ProviderName identifies this provider.
	ProviderName = "luchtmeetnet"
)

// ClientConfig holds configuration for the Luchtmeetnet client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the resilient client to use. If nil, a default one is
	// created.
	HTTPClient *resilience.Client
}

// Client is a Luchtmeetnet API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
}

// NewClient creates a new Luchtmeetnet client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

type pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

type stationsResponse struct {
	Pagination pagination    `json:"pagination"`
	Data       []stationData `json:"data"`
}

type stationData struct {
	Number   string `json:"number"`
	Location string `json:"location"`

	// Geometry is a GeoJSON point, longitude first.
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Components []string `json:"components"`
}

type measurementsResponse struct {
	Pagination pagination        `json:"pagination"`
	Data       []measurementData `json:"data"`
}

type measurementData struct {
	StationNumber     string  `json:"station_number"`
	Formula           string  `json:"formula"`
	Value             float64 `json:"value"`
	TimestampMeasured string  `json:"timestamp_measured"`
}

// paginate fetches pages until the last one, feeding each to collect.
func paginate[T any](ctx context.Context, c *Client, path string, lastPage func(*T) int, collect func(*T)) error {
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))

		var resp T
		if err := c.httpClient.FetchJSON(ctx, c.baseURL+path, q, &resp); err != nil {
			return err
		}
		collect(&resp)

		if page >= lastPage(&resp) {
			return nil
		}
	}
}

// FetchStations retrieves all monitoring stations.
func (c *Client) FetchStations(ctx context.Context) ([]*airquality.Station, error) {
	var stations []*airquality.Station
	err := paginate(ctx, c, "/stations",
		func(r *stationsResponse) int { return r.Pagination.LastPage },
		func(r *stationsResponse) {
			for i := range r.Data {
				if s := toStation(&r.Data[i]); s != nil {
					stations = append(stations, s)
				}
			}
		})
	if err != nil {
		return nil, fmt.Errorf("fetch stations: %w", err)
	}
	return stations, nil
}

// FetchLatestMeasurements retrieves the latest measurements for all stations.
func (c *Client) FetchLatestMeasurements(ctx context.Context) ([]*airquality.Measurement, error) {
	var measurements []*airquality.Measurement
	err := paginate(ctx, c, "/measurements",
		func(r *measurementsResponse) int { return r.Pagination.LastPage },
		func(r *measurementsResponse) {
			for i := range r.Data {
				if m := toMeasurement(&r.Data[i]); m != nil {
					measurements = append(measurements, m)
				}
			}
		})
	if err != nil {
		return nil, fmt.Errorf("fetch measurements: %w", err)
	}
	return measurements, nil
}

// FetchSnapshot fetches a complete snapshot of stations and their newest
// measurement per pollutant.
func (c *Client) FetchSnapshot(ctx context.Context) (*airquality.AQSnapshot, error) {
	stations, err := c.FetchStations(ctx)
	if err != nil {
		return nil, err
	}

	measurements, err := c.FetchLatestMeasurements(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := airquality.NewAQSnapshot(ProviderName)
	for _, s := range stations {
		snapshot.Stations[s.ID] = s
	}
	for _, m := range measurements {
		if prev := snapshot.GetMeasurement(m.StationID, m.Pollutant); prev != nil && prev.MeasuredAt.After(m.MeasuredAt) {
			continue
		}
		snapshot.SetMeasurement(m)
	}

	return snapshot, nil
}

// toStation converts API station data. Stations without coordinates cannot
// take part in interpolation and are skipped.
func toStation(s *stationData) *airquality.Station {
	if len(s.Geometry.Coordinates) < 2 {
		return nil
	}

	pollutants := make([]airquality.Pollutant, 0, len(s.Components))
	for _, comp := range s.Components {
		if p := toPollutant(comp); p != "" {
			pollutants = append(pollutants, p)
		}
	}

	return &airquality.Station{
		ID:         s.Number,
		Name:       s.Location,
		Lat:        s.Geometry.Coordinates[1],
		Lon:        s.Geometry.Coordinates[0],
		Pollutants: pollutants,
		UpdatedAt:  time.Now(),
	}
}

// toMeasurement converts API measurement data. CO is reported in µg/m³ and
// stored in mg/m³.
func toMeasurement(m *measurementData) *airquality.Measurement {
	pollutant := toPollutant(m.Formula)
	if pollutant == "" {
		return nil
	}

	measuredAt, _ := time.Parse(time.RFC3339, m.TimestampMeasured)

	value, unit := m.Value, "µg/m³"
	if pollutant == airquality.PollutantCO {
		value, unit = value/1000, "mg/m³"
	}

	return &airquality.Measurement{
		StationID:  m.StationNumber,
		Pollutant:  pollutant,
		Value:      value,
		Unit:       unit,
		MeasuredAt: measuredAt,
	}
}

func toPollutant(formula string) airquality.Pollutant {
	switch strings.ToUpper(formula) {
	case "NO2":
		return airquality.PollutantNO2
	case "PM25":
		return airquality.PollutantPM25
	case "PM10":
		return airquality.PollutantPM10
	case "O3":
		return airquality.PollutantO3
	case "SO2":
		return airquality.PollutantSO2
	case "CO":
		return airquality.PollutantCO
	default:
		return ""
	}
}
