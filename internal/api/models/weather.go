package models

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/nimbusweather/nimbus/internal/units"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// Units selects the unit of each dimension in a weather response.
type Units struct {
	Temperature   units.Code
	Precipitation units.Code
	Speed         units.Code
	Distance      units.Code
	Pressure      units.Code
}

// DefaultUnits are the canonical units of the stored weather.
func DefaultUnits() Units {
	return Units{
		Temperature:   units.Celsius,
		Precipitation: units.Millimeters,
		Speed:         units.MetersPerSecond,
		Distance:      units.Meters,
		Pressure:      units.Hectopascals,
	}
}

// Sections selects the parts of a weather response.
type Sections struct {
	Current  bool
	Daily    bool
	Hourly   bool
	Minutely bool
	Alerts   bool
	Normals  bool
}

// WeatherQuery holds the parsed query parameters of the weather endpoint.
type WeatherQuery struct {
	Units    Units
	Sections Sections
}

type unitParam struct {
	name    string
	allowed []string
	dst     func(*Units) *units.Code
}

var unitParams = []unitParam{
	{"temperatureUnit", []string{"c", "f", "k"}, func(u *Units) *units.Code { return &u.Temperature }},
	{"precipitationUnit", []string{"mm", "cm", "in"}, func(u *Units) *units.Code { return &u.Precipitation }},
	{"speedUnit", []string{"ms", "kmh", "mph", "kn"}, func(u *Units) *units.Code { return &u.Speed }},
	{"distanceUnit", []string{"m", "km", "mi", "ft"}, func(u *Units) *units.Code { return &u.Distance }},
	{"pressureUnit", []string{"hpa", "inhg", "mmhg", "kpa"}, func(u *Units) *units.Code { return &u.Pressure }},
}

type sectionParam struct {
	name string
	dst  func(*Sections) *bool
}

var sectionParams = []sectionParam{
	{"withCurrent", func(s *Sections) *bool { return &s.Current }},
	{"withDaily", func(s *Sections) *bool { return &s.Daily }},
	{"withHourly", func(s *Sections) *bool { return &s.Hourly }},
	{"withMinutely", func(s *Sections) *bool { return &s.Minutely }},
	{"withAlerts", func(s *Sections) *bool { return &s.Alerts }},
	{"withNormals", func(s *Sections) *bool { return &s.Normals }},
}

// ParseWeatherQuery parses unit and section parameters. Absent parameters
// take canonical units and include every section.
func ParseWeatherQuery(q url.Values) (WeatherQuery, []FieldError) {
	wq := WeatherQuery{
		Units:    DefaultUnits(),
		Sections: Sections{Current: true, Daily: true, Hourly: true, Minutely: true, Alerts: true, Normals: true},
	}
	var errs []FieldError

	for _, p := range unitParams {
		raw := strings.ToLower(strings.TrimSpace(q.Get(p.name)))
		if raw == "" {
			continue
		}
		if !slices.Contains(p.allowed, raw) {
			errs = append(errs, FieldError{
				Field:   p.name,
				Message: "must be one of " + strings.Join(p.allowed, ", "),
				Code:    "INVALID_ENUM",
			})
			continue
		}
		dst := p.dst(&wq.Units)
		*dst = units.ParseCode(raw, *dst)
	}

	for _, p := range sectionParams {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: p.name, Message: "must be a boolean", Code: "INVALID_BOOLEAN"})
			continue
		}
		*p.dst(&wq.Sections) = v
	}

	return wq, errs
}

// UnitSymbols reports the units used in a weather response.
type UnitSymbols struct {
	Temperature   string `json:"temperature"`
	Precipitation string `json:"precipitation"`
	Speed         string `json:"speed"`
	Distance      string `json:"distance"`
	Pressure      string `json:"pressure"`
}

// WeatherResponse is the body of GET /v1/locations/{id}/weather. Minutely
// and Alerts keep the stored distinction: null when the source did not
// report them, an empty list when it reported none.
type WeatherResponse struct {
	Location Location    `json:"location"`
	Units    UnitSymbols `json:"units"`

	Current  *weather.Current    `json:"current,omitempty"`
	Daily    []weather.Daily     `json:"daily,omitempty"`
	Hourly   []weather.Hourly    `json:"hourly,omitempty"`
	Minutely *[]weather.Minutely `json:"minutely,omitempty"`
	Alerts   *[]weather.Alert    `json:"alerts,omitempty"`
	Normals  *weather.Normals    `json:"normals,omitempty"`
}

// NewWeatherResponse projects the stored weather of loc onto the selected
// sections and converts it to the selected units.
func NewWeatherResponse(loc *weather.Location, q WeatherQuery) *WeatherResponse {
	u := q.Units
	resp := &WeatherResponse{
		Location: NewLocation(loc),
		Units: UnitSymbols{
			Temperature:   u.Temperature.Symbol(),
			Precipitation: u.Precipitation.Symbol(),
			Speed:         u.Speed.Symbol(),
			Distance:      u.Distance.Symbol(),
			Pressure:      u.Pressure.Symbol(),
		},
	}
	w := loc.Weather
	if w == nil {
		return resp
	}

	c := converter{u}
	s := q.Sections
	if s.Current && w.Current != nil {
		resp.Current = c.current(w.Current)
	}
	if s.Daily && w.Daily != nil {
		resp.Daily = make([]weather.Daily, len(w.Daily))
		for i := range w.Daily {
			resp.Daily[i] = c.daily(w.Daily[i])
		}
	}
	if s.Hourly && w.Hourly != nil {
		resp.Hourly = make([]weather.Hourly, len(w.Hourly))
		for i := range w.Hourly {
			resp.Hourly[i] = c.hourly(w.Hourly[i])
		}
	}
	if s.Minutely {
		var minutely []weather.Minutely
		if w.Minutely != nil {
			minutely = make([]weather.Minutely, len(w.Minutely))
			for i, m := range w.Minutely {
				m.PrecipitationIntensity = c.precip(m.PrecipitationIntensity)
				minutely[i] = m
			}
		}
		resp.Minutely = &minutely
	}
	if s.Alerts {
		alerts := w.Alerts
		resp.Alerts = &alerts
	}
	if s.Normals && w.Normals != nil {
		n := *w.Normals
		n.DaytimeTemperature = c.temp(n.DaytimeTemperature)
		n.NighttimeTemperature = c.temp(n.NighttimeTemperature)
		resp.Normals = &n
	}
	return resp
}

// converter copies canonical values into the requested units. Stored
// structs are never modified.
type converter struct {
	u Units
}

func (c converter) temp(v *float64) *float64     { return units.FromCanonical(v, c.u.Temperature) }
func (c converter) precip(v *float64) *float64   { return units.FromCanonical(v, c.u.Precipitation) }
func (c converter) speed(v *float64) *float64    { return units.FromCanonical(v, c.u.Speed) }
func (c converter) distance(v *float64) *float64 { return units.FromCanonical(v, c.u.Distance) }
func (c converter) pressure(v *float64) *float64 { return units.FromCanonical(v, c.u.Pressure) }

// degrees converts a temperature difference, which has no offset.
func (c converter) degrees(v *float64) *float64 {
	if v == nil {
		return nil
	}
	zero := 0.0
	out := *c.temp(v) - *c.temp(&zero)
	return &out
}

func (c converter) temperature(t *weather.Temperature) *weather.Temperature {
	if t == nil {
		return nil
	}
	return &weather.Temperature{
		Temperature:         c.temp(t.Temperature),
		RealFeel:            c.temp(t.RealFeel),
		RealFeelShade:       c.temp(t.RealFeelShade),
		ApparentTemperature: c.temp(t.ApparentTemperature),
		WindChill:           c.temp(t.WindChill),
		WetBulbTemperature:  c.temp(t.WetBulbTemperature),
	}
}

func (c converter) wind(w *weather.Wind) *weather.Wind {
	if w == nil {
		return nil
	}
	return &weather.Wind{Degree: w.Degree, Speed: c.speed(w.Speed), Gusts: c.speed(w.Gusts)}
}

func (c converter) precipitation(p *weather.Precipitation) *weather.Precipitation {
	if p == nil {
		return nil
	}
	return &weather.Precipitation{
		Total:        c.precip(p.Total),
		Thunderstorm: c.precip(p.Thunderstorm),
		Rain:         c.precip(p.Rain),
		Snow:         c.precip(p.Snow),
		Ice:          c.precip(p.Ice),
	}
}

func dailyRange(r *weather.DailyRange, conv func(*float64) *float64) *weather.DailyRange {
	if r == nil {
		return nil
	}
	return &weather.DailyRange{Average: conv(r.Average), Max: conv(r.Max), Min: conv(r.Min)}
}

func (c converter) current(cur *weather.Current) *weather.Current {
	out := *cur
	out.Temperature = c.temperature(cur.Temperature)
	out.Wind = c.wind(cur.Wind)
	out.DewPoint = c.temp(cur.DewPoint)
	out.Pressure = c.pressure(cur.Pressure)
	out.Visibility = c.distance(cur.Visibility)
	out.CeilingHeight = c.distance(cur.CeilingHeight)
	return &out
}

func (c converter) halfDay(h *weather.HalfDay) *weather.HalfDay {
	if h == nil {
		return nil
	}
	out := *h
	out.Temperature = c.temperature(h.Temperature)
	out.Precipitation = c.precipitation(h.Precipitation)
	out.Wind = c.wind(h.Wind)
	return &out
}

func (c converter) daily(d weather.Daily) weather.Daily {
	d.Day = c.halfDay(d.Day)
	d.Night = c.halfDay(d.Night)
	if d.DegreeDay != nil {
		d.DegreeDay = &weather.DegreeDay{Heating: c.degrees(d.DegreeDay.Heating), Cooling: c.degrees(d.DegreeDay.Cooling)}
	}
	d.DewPoint = dailyRange(d.DewPoint, c.temp)
	d.Pressure = dailyRange(d.Pressure, c.pressure)
	d.Visibility = dailyRange(d.Visibility, c.distance)
	return d
}

func (c converter) hourly(h weather.Hourly) weather.Hourly {
	h.Temperature = c.temperature(h.Temperature)
	h.Precipitation = c.precipitation(h.Precipitation)
	h.Wind = c.wind(h.Wind)
	h.DewPoint = c.temp(h.DewPoint)
	h.Pressure = c.pressure(h.Pressure)
	h.Visibility = c.distance(h.Visibility)
	return h
}
