package airquality

import (
	"errors"
	"math"
	"slices"
)

// Interpolation errors.
var (
	ErrNoStationsInRange = errors.New("no stations within range")
	ErrInsufficientData  = errors.New("insufficient data for interpolation")
)

// Confidence represents the confidence level of an estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// InterpolationConfig holds configuration for inverse distance weighting.
type InterpolationConfig struct {
	// MaxDistance in meters. Stations further away are ignored. Default: 50km.
	MaxDistance float64

	// MaxStations is the number of nearest stations considered. Default: 5.
	MaxStations int

	// Power is the IDW power parameter. Default: 2.
	Power float64

	// HighConfidenceMaxDistance and MediumConfidenceMaxDistance bound the
	// nearest contributing station distance for each confidence level.
	HighConfidenceMaxDistance   float64
	MediumConfidenceMaxDistance float64
}

// DefaultInterpolationConfig returns the default configuration.
func DefaultInterpolationConfig() InterpolationConfig {
	return InterpolationConfig{
		MaxDistance:                 50000,
		MaxStations:                 5,
		Power:                       2.0,
		HighConfidenceMaxDistance:   5000,
		MediumConfidenceMaxDistance: 15000,
	}
}

// Estimate is the air quality estimated at a point from nearby stations.
type Estimate struct {
	AirQuality AirQuality

	// Confidence per estimated pollutant.
	Confidence map[Pollutant]Confidence

	// NearestStationDistance is the distance in meters to the nearest
	// station that contributed any value.
	NearestStationDistance float64
}

// Interpolator performs spatial interpolation of station measurements.
type Interpolator struct {
	config InterpolationConfig
}

// NewInterpolator creates an Interpolator, filling unset fields with defaults.
func NewInterpolator(config InterpolationConfig) *Interpolator {
	def := DefaultInterpolationConfig()
	if config.MaxDistance <= 0 {
		config.MaxDistance = def.MaxDistance
	}
	if config.MaxStations <= 0 {
		config.MaxStations = def.MaxStations
	}
	if config.Power <= 0 {
		config.Power = def.Power
	}
	if config.HighConfidenceMaxDistance <= 0 {
		config.HighConfidenceMaxDistance = def.HighConfidenceMaxDistance
	}
	if config.MediumConfidenceMaxDistance <= 0 {
		config.MediumConfidenceMaxDistance = def.MediumConfidenceMaxDistance
	}
	return &Interpolator{config: config}
}

type nearbyStation struct {
	station  *Station
	distance float64
}

// Interpolate estimates concentrations at lat/lon. Pollutants no nearby
// station measures stay nil in the result.
func (i *Interpolator) Interpolate(lat, lon float64, snapshot *AQSnapshot) (*Estimate, error) {
	if snapshot == nil || len(snapshot.Stations) == 0 {
		return nil, ErrNoStationsInRange
	}

	var nearby []nearbyStation
	for _, st := range snapshot.Stations {
		d := HaversineDistance(lat, lon, st.Lat, st.Lon)
		if d <= i.config.MaxDistance {
			nearby = append(nearby, nearbyStation{station: st, distance: d})
		}
	}
	if len(nearby) == 0 {
		return nil, ErrNoStationsInRange
	}

	slices.SortFunc(nearby, func(a, b nearbyStation) int {
		switch {
		case a.distance < b.distance:
			return -1
		case a.distance > b.distance:
			return 1
		default:
			return 0
		}
	})
	if len(nearby) > i.config.MaxStations {
		nearby = nearby[:i.config.MaxStations]
	}

	est := &Estimate{
		Confidence:             make(map[Pollutant]Confidence),
		NearestStationDistance: math.Inf(1),
	}
	for _, p := range AllPollutants() {
		value, nearest, count, ok := i.weighted(p, nearby, snapshot)
		if !ok {
			continue
		}
		est.AirQuality.set(p, value)
		est.Confidence[p] = i.confidence(nearest, count)
		est.NearestStationDistance = math.Min(est.NearestStationDistance, nearest)
	}

	if !est.AirQuality.IsValid() {
		return nil, ErrInsufficientData
	}
	return est, nil
}

// weighted computes the IDW average of a pollutant across stations, sorted
// by distance.
func (i *Interpolator) weighted(p Pollutant, nearby []nearbyStation, snapshot *AQSnapshot) (value, nearest float64, count int, ok bool) {
	var sum, totalWeight float64
	for _, ns := range nearby {
		m := snapshot.GetMeasurement(ns.station.ID, p)
		if m == nil {
			continue
		}
		if count == 0 {
			nearest = ns.distance
		}
		count++

		// A station within a meter dominates the estimate.
		weight := 1e10
		if ns.distance >= 1 {
			weight = 1 / math.Pow(ns.distance, i.config.Power)
		}
		sum += m.Value * weight
		totalWeight += weight
	}
	if count == 0 {
		return 0, 0, 0, false
	}
	return sum / totalWeight, nearest, count, true
}

func (i *Interpolator) confidence(nearest float64, stations int) Confidence {
	if nearest <= i.config.HighConfidenceMaxDistance && stations >= 2 {
		return ConfidenceHigh
	}
	if nearest <= i.config.MediumConfidenceMaxDistance {
		return ConfidenceMedium
	}
	return ConfidenceLow
}

func (a *AirQuality) set(p Pollutant, v float64) {
	switch p {
	case PollutantPM25:
		a.PM25 = &v
	case PollutantPM10:
		a.PM10 = &v
	case PollutantSO2:
		a.SO2 = &v
	case PollutantNO2:
		a.NO2 = &v
	case PollutantO3:
		a.O3 = &v
	case PollutantCO:
		a.CO = &v
	}
}

// HaversineDistance returns the great-circle distance between two points in
// meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
