// Package weather defines the canonical weather model every source converts
// into, the helpers shared by source converters, and the refresh service
// that assembles weather for stored locations.
package weather

import (
	"time"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/pollen"
)

// Canonical units: °C, m/s, mm, hPa, m, %. A nil field was not reported by
// the vendor and never means zero.

// Wrapper is the result of one source request. For slices, nil means "not
// reported" and an empty non-nil slice means "explicitly empty".
type Wrapper struct {
	Current  *Current   `json:"current,omitempty"`
	Daily    []Daily    `json:"daily,omitempty"`
	Hourly   []Hourly   `json:"hourly,omitempty"`
	Minutely []Minutely `json:"minutely"`
	Alerts   []Alert    `json:"alerts"`
	Normals  *Normals   `json:"normals,omitempty"`
}

// Code is the canonical weather condition.
type Code string

const (
	CodeClear        Code = "CLEAR"
	CodePartlyCloudy Code = "PARTLY_CLOUDY"
	CodeCloudy       Code = "CLOUDY"
	CodeRain         Code = "RAIN"
	CodeSnow         Code = "SNOW"
	CodeWind         Code = "WIND"
	CodeFog          Code = "FOG"
	CodeHaze         Code = "HAZE"
	CodeSleet        Code = "SLEET"
	CodeHail         Code = "HAIL"
	CodeThunder      Code = "THUNDER"
	CodeThunderstorm Code = "THUNDERSTORM"
)

// Severity ranks codes when several hours are merged into one half-day.
func (c Code) Severity() int {
	switch c {
	case CodeThunderstorm:
		return 11
	case CodeHail:
		return 10
	case CodeThunder:
		return 9
	case CodeSnow:
		return 8
	case CodeSleet:
		return 7
	case CodeRain:
		return 6
	case CodeWind:
		return 5
	case CodeFog:
		return 4
	case CodeHaze:
		return 3
	case CodeCloudy:
		return 2
	case CodePartlyCloudy:
		return 1
	default:
		return 0
	}
}

type Temperature struct {
	Temperature         *float64 `json:"temperature,omitempty"`
	RealFeel            *float64 `json:"realFeel,omitempty"`
	RealFeelShade       *float64 `json:"realFeelShade,omitempty"`
	ApparentTemperature *float64 `json:"apparentTemperature,omitempty"`
	WindChill           *float64 `json:"windChill,omitempty"`
	WetBulbTemperature  *float64 `json:"wetBulbTemperature,omitempty"`
}

type Wind struct {
	// Degree the wind blows from, clockwise from north.
	Degree *float64 `json:"degree,omitempty"`
	Speed  *float64 `json:"speed,omitempty"`
	Gusts  *float64 `json:"gusts,omitempty"`
}

type Current struct {
	WeatherText      string                 `json:"weatherText,omitempty"`
	WeatherCode      *Code                  `json:"weatherCode,omitempty"`
	Temperature      *Temperature           `json:"temperature,omitempty"`
	Wind             *Wind                  `json:"wind,omitempty"`
	UVIndex          *float64               `json:"uvIndex,omitempty"`
	AirQuality       *airquality.AirQuality `json:"airQuality,omitempty"`
	RelativeHumidity *float64               `json:"relativeHumidity,omitempty"`
	DewPoint         *float64               `json:"dewPoint,omitempty"`
	Pressure         *float64               `json:"pressure,omitempty"`
	CloudCover       *float64               `json:"cloudCover,omitempty"`
	Visibility       *float64               `json:"visibility,omitempty"`
	CeilingHeight    *float64               `json:"ceilingHeight,omitempty"`
	DailyForecast    string                 `json:"dailyForecast,omitempty"`
	HourlyForecast   string                 `json:"hourlyForecast,omitempty"`
}

// Precipitation amounts in mm, probabilities in %, durations in hours all
// share this breakdown.
type Precipitation struct {
	Total        *float64 `json:"total,omitempty"`
	Thunderstorm *float64 `json:"thunderstorm,omitempty"`
	Rain         *float64 `json:"rain,omitempty"`
	Snow         *float64 `json:"snow,omitempty"`
	Ice          *float64 `json:"ice,omitempty"`
}

type HalfDay struct {
	WeatherText              string         `json:"weatherText,omitempty"`
	WeatherCode              *Code          `json:"weatherCode,omitempty"`
	Temperature              *Temperature   `json:"temperature,omitempty"`
	Precipitation            *Precipitation `json:"precipitation,omitempty"`
	PrecipitationProbability *Precipitation `json:"precipitationProbability,omitempty"`
	PrecipitationDuration    *Precipitation `json:"precipitationDuration,omitempty"`
	Wind                     *Wind          `json:"wind,omitempty"`
	CloudCover               *float64       `json:"cloudCover,omitempty"`
}

type DegreeDay struct {
	Heating *float64 `json:"heating,omitempty"`
	Cooling *float64 `json:"cooling,omitempty"`
}

type UV struct {
	Index *float64 `json:"index,omitempty"`
}

// DailyRange aggregates one quantity over a day.
type DailyRange struct {
	Average *float64 `json:"average,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Min     *float64 `json:"min,omitempty"`
}

type Daily struct {
	// Date is local midnight of the day.
	Date             time.Time              `json:"date"`
	Day              *HalfDay               `json:"day,omitempty"`
	Night            *HalfDay               `json:"night,omitempty"`
	DegreeDay        *DegreeDay             `json:"degreeDay,omitempty"`
	Sunrise          *time.Time             `json:"sunrise,omitempty"`
	Sunset           *time.Time             `json:"sunset,omitempty"`
	AirQuality       *airquality.AirQuality `json:"airQuality,omitempty"`
	Pollen           *pollen.Pollen         `json:"pollen,omitempty"`
	UV               *UV                    `json:"uv,omitempty"`
	SunshineDuration *float64               `json:"sunshineDuration,omitempty"`
	RelativeHumidity *DailyRange            `json:"relativeHumidity,omitempty"`
	DewPoint         *DailyRange            `json:"dewPoint,omitempty"`
	Pressure         *DailyRange            `json:"pressure,omitempty"`
	CloudCover       *DailyRange            `json:"cloudCover,omitempty"`
	Visibility       *DailyRange            `json:"visibility,omitempty"`
}

type Hourly struct {
	Date                     time.Time              `json:"date"`
	IsDaylight               *bool                  `json:"isDaylight,omitempty"`
	WeatherText              string                 `json:"weatherText,omitempty"`
	WeatherCode              *Code                  `json:"weatherCode,omitempty"`
	Temperature              *Temperature           `json:"temperature,omitempty"`
	Precipitation            *Precipitation         `json:"precipitation,omitempty"`
	PrecipitationProbability *Precipitation         `json:"precipitationProbability,omitempty"`
	Wind                     *Wind                  `json:"wind,omitempty"`
	AirQuality               *airquality.AirQuality `json:"airQuality,omitempty"`
	UVIndex                  *float64               `json:"uvIndex,omitempty"`
	RelativeHumidity         *float64               `json:"relativeHumidity,omitempty"`
	DewPoint                 *float64               `json:"dewPoint,omitempty"`
	Pressure                 *float64               `json:"pressure,omitempty"`
	CloudCover               *float64               `json:"cloudCover,omitempty"`
	Visibility               *float64               `json:"visibility,omitempty"`
}

type Minutely struct {
	Date time.Time `json:"date"`

	// MinuteInterval is the gap in minutes to the next entry.
	MinuteInterval int `json:"minuteInterval"`

	// PrecipitationIntensity in mm/h.
	PrecipitationIntensity *float64 `json:"precipitationIntensity,omitempty"`
}

// AlertSeverity ranks alerts from Extreme down to Unknown.
type AlertSeverity string

const (
	SeverityExtreme  AlertSeverity = "extreme"
	SeveritySevere   AlertSeverity = "severe"
	SeverityModerate AlertSeverity = "moderate"
	SeverityMinor    AlertSeverity = "minor"
	SeverityUnknown  AlertSeverity = "unknown"
)

// Color returns the display color of the severity.
func (s AlertSeverity) Color() string {
	switch s {
	case SeverityExtreme:
		return "#e2001a"
	case SeverityModerate:
		return "#fbba00"
	case SeveritySevere:
		return "#f18a00"
	case SeverityMinor:
		return "#ffed00"
	default:
		return "#b4b4b4"
	}
}

type Alert struct {
	AlertID     string        `json:"alertId"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	Headline    string        `json:"headline,omitempty"`
	Description string        `json:"description,omitempty"`
	Instruction string        `json:"instruction,omitempty"`
	Source      string        `json:"source,omitempty"`
	Severity    AlertSeverity `json:"severity"`
	Color       string        `json:"color,omitempty"`
}

// Normals are long-term monthly averages.
type Normals struct {
	Month                time.Month `json:"month"`
	DaytimeTemperature   *float64   `json:"daytimeTemperature,omitempty"`
	NighttimeTemperature *float64   `json:"nighttimeTemperature,omitempty"`
}

// Location is a stored place weather is refreshed for.
type Location struct {
	ID          string  `json:"id"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	TimeZone    string  `json:"timeZone"`
	City        string  `json:"city,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"countryCode,omitempty"`

	// Source is the id of the main source.
	Source string `json:"source"`

	// SecondarySources overrides the source per feature.
	SecondarySources map[Feature]string `json:"secondarySources,omitempty"`

	// Parameters holds per-source pre-resolved values, keyed by source id.
	Parameters map[string]map[string]string `json:"parameters,omitempty"`

	Weather     *Wrapper   `json:"weather,omitempty"`
	RefreshedAt *time.Time `json:"refreshedAt,omitempty"`
}

// TZ returns the location's time zone, or UTC if it is unknown.
func (l *Location) TZ() *time.Location {
	if l.TimeZone == "" {
		return time.UTC
	}
	tz, err := time.LoadLocation(l.TimeZone)
	if err != nil {
		return time.UTC
	}
	return tz
}

// Parameter returns a pre-resolved parameter for a source.
func (l *Location) Parameter(source, key string) string {
	return l.Parameters[source][key]
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
