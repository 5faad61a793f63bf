// Package airquality holds the air quality model shared by every source and
// the station-based air quality snapshot used by measurement networks.
package airquality

import (
	"errors"
	"math"
	"time"
)

// Provider errors.
var (
	ErrStationNotFound     = errors.New("station not found")
	ErrNoMeasurements      = errors.New("no measurements available")
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
)

// Pollutant represents an air quality pollutant type.
type Pollutant string

const (
	PollutantPM25 Pollutant = "PM25"
	PollutantPM10 Pollutant = "PM10"
	PollutantSO2  Pollutant = "SO2"
	PollutantNO2  Pollutant = "NO2"
	PollutantO3   Pollutant = "O3"
	PollutantCO   Pollutant = "CO"
)

// AllPollutants returns every pollutant tracked by the model.
func AllPollutants() []Pollutant {
	return []Pollutant{PollutantPM25, PollutantPM10, PollutantSO2, PollutantNO2, PollutantO3, PollutantCO}
}

// AirQuality holds pollutant concentrations. Concentrations are in µg/m³,
// except CO which is in mg/m³. A nil concentration was not reported.
// Index, level and color are derived from the concentrations.
type AirQuality struct {
	PM25 *float64 `json:"pm25"`
	PM10 *float64 `json:"pm10"`
	SO2  *float64 `json:"so2"`
	NO2  *float64 `json:"no2"`
	O3   *float64 `json:"o3"`
	CO   *float64 `json:"co"`
}

// Concentration returns the concentration of a pollutant.
func (a *AirQuality) Concentration(p Pollutant) *float64 {
	if a == nil {
		return nil
	}
	switch p {
	case PollutantPM25:
		return a.PM25
	case PollutantPM10:
		return a.PM10
	case PollutantSO2:
		return a.SO2
	case PollutantNO2:
		return a.NO2
	case PollutantO3:
		return a.O3
	case PollutantCO:
		return a.CO
	default:
		return nil
	}
}

// IsValid reports whether at least one concentration is present.
func (a *AirQuality) IsValid() bool {
	if a == nil {
		return false
	}
	for _, p := range AllPollutants() {
		if a.Concentration(p) != nil {
			return true
		}
	}
	return false
}

// Index values delimiting the levels.
var indexBreakpoints = []float64{0, 20, 50, 100, 150, 250, 400}

// Concentration thresholds matching indexBreakpoints, per pollutant.
var concentrationBreakpoints = map[Pollutant][]float64{
	PollutantPM25: {0, 5, 15, 30, 60, 100, 150},
	PollutantPM10: {0, 15, 45, 80, 160, 250, 400},
	PollutantSO2:  {0, 20, 40, 270, 500, 960, 1600},
	PollutantNO2:  {0, 10, 25, 200, 400, 1000, 3000},
	PollutantO3:   {0, 50, 100, 160, 240, 480, 600},
	PollutantCO:   {0, 2, 4, 35, 100, 230, 400},
}

// Index returns the index of a single pollutant, or nil when it was not
// reported. Values past the last threshold extrapolate the last segment.
func (a *AirQuality) Index(p Pollutant) *int {
	c := a.Concentration(p)
	thresholds, ok := concentrationBreakpoints[p]
	if c == nil || !ok {
		return nil
	}
	v := *c
	if v < 0 {
		v = 0
	}
	last := len(thresholds) - 1
	i := 1
	for i < last && v > thresholds[i] {
		i++
	}
	lowC, highC := thresholds[i-1], thresholds[i]
	lowI, highI := indexBreakpoints[i-1], indexBreakpoints[i]
	index := int(math.Round(lowI + (v-lowC)*(highI-lowI)/(highC-lowC)))
	return &index
}

// AQI returns the highest pollutant index, or nil when nothing was reported.
func (a *AirQuality) AQI() *int {
	var highest *int
	for _, p := range AllPollutants() {
		if idx := a.Index(p); idx != nil && (highest == nil || *idx > *highest) {
			highest = idx
		}
	}
	return highest
}

// Level is an air quality category.
type Level string

const (
	LevelExcellent     Level = "EXCELLENT"
	LevelFair          Level = "FAIR"
	LevelPoor          Level = "POOR"
	LevelUnhealthy     Level = "UNHEALTHY"
	LevelVeryUnhealthy Level = "VERY_UNHEALTHY"
	LevelDangerous     Level = "DANGEROUS"
)

var levelColors = map[Level]string{
	LevelExcellent:     "#00e59b",
	LevelFair:          "#ffc302",
	LevelPoor:          "#ff712b",
	LevelUnhealthy:     "#f62a55",
	LevelVeryUnhealthy: "#c72eaa",
	LevelDangerous:     "#9930ff",
}

// LevelFromIndex converts an index to its level.
func LevelFromIndex(index int) Level {
	switch {
	case index <= 20:
		return LevelExcellent
	case index <= 50:
		return LevelFair
	case index <= 100:
		return LevelPoor
	case index <= 150:
		return LevelUnhealthy
	case index <= 250:
		return LevelVeryUnhealthy
	default:
		return LevelDangerous
	}
}

// Level returns the overall level, or "" when nothing was reported.
func (a *AirQuality) Level() Level {
	aqi := a.AQI()
	if aqi == nil {
		return ""
	}
	return LevelFromIndex(*aqi)
}

// Color returns the display color of the overall level.
func (a *AirQuality) Color() string {
	return levelColors[a.Level()]
}

// Station represents an air quality monitoring station.
type Station struct {
	ID         string
	Name       string
	Lat        float64
	Lon        float64
	Pollutants []Pollutant
	UpdatedAt  time.Time
}

// Measurement represents a single pollutant measurement at a station.
type Measurement struct {
	StationID  string
	Pollutant  Pollutant
	Value      float64
	Unit       string
	MeasuredAt time.Time
}

// AQSnapshot is a point-in-time view of a measurement network.
type AQSnapshot struct {
	// Stations maps station ID to station metadata.
	Stations map[string]*Station

	// Measurements holds the latest measurement per station and pollutant,
	// keyed "stationID:pollutant".
	Measurements map[string]*Measurement

	FetchedAt time.Time
	Provider  string
}

// NewAQSnapshot creates a new empty snapshot.
func NewAQSnapshot(provider string) *AQSnapshot {
	return &AQSnapshot{
		Stations:     make(map[string]*Station),
		Measurements: make(map[string]*Measurement),
		FetchedAt:    time.Now(),
		Provider:     provider,
	}
}

// GetMeasurement retrieves a measurement for a station and pollutant.
func (s *AQSnapshot) GetMeasurement(stationID string, pollutant Pollutant) *Measurement {
	return s.Measurements[stationID+":"+string(pollutant)]
}

// SetMeasurement adds or updates a measurement in the snapshot.
func (s *AQSnapshot) SetMeasurement(m *Measurement) {
	s.Measurements[m.StationID+":"+string(m.Pollutant)] = m
}
