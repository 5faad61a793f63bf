// Package units converts vendor-native measurement units to the canonical
// units used by the weather model (°C, m/s, hPa, m, mm, %).
package units

import "strings"

// Code is a unit-type code as used by vendor payloads. The numbering follows
// the AccuWeather / Azure Maps UnitType enumeration so codes from those
// payloads can be used directly.
type Code int

const (
	Feet                 Code = 0
	Inches               Code = 1
	Miles                Code = 2
	Millimeters          Code = 3
	Centimeters          Code = 4
	Meters               Code = 5
	Kilometers           Code = 6
	KilometersPerHour    Code = 7
	Knots                Code = 8
	MilesPerHour         Code = 9
	MetersPerSecond      Code = 10
	Hectopascals         Code = 11
	InchesOfMercury      Code = 12
	Kilopascals          Code = 13
	Millibars            Code = 14
	MillimetersOfMercury Code = 15
	PoundsPerSquareInch  Code = 16
	Celsius              Code = 17
	Fahrenheit           Code = 18
	Kelvin               Code = 19
	Percent              Code = 20
	Float                Code = 21
	Integer              Code = 22
)

// Dimension groups codes measuring the same physical quantity.
type Dimension int

const (
	DimensionUnknown Dimension = iota
	DimensionTemperature
	DimensionSpeed
	DimensionPressure
	DimensionDistance
	DimensionPrecipitation
	DimensionRatio
)

// Canonical returns the canonical code of the dimension.
func (d Dimension) Canonical() Code {
	switch d {
	case DimensionTemperature:
		return Celsius
	case DimensionSpeed:
		return MetersPerSecond
	case DimensionPressure:
		return Hectopascals
	case DimensionDistance:
		return Meters
	case DimensionPrecipitation:
		return Millimeters
	default:
		return Float
	}
}

type codeInfo struct {
	dimension Dimension
	// canonical = value*scale + offset
	scale  float64
	offset float64
	symbol string
}

var codes = map[Code]codeInfo{
	Feet:                 {DimensionDistance, 0.3048, 0, "ft"},
	Inches:               {DimensionPrecipitation, 25.4, 0, "in"},
	Miles:                {DimensionDistance, 1609.344, 0, "mi"},
	Millimeters:          {DimensionPrecipitation, 1, 0, "mm"},
	Centimeters:          {DimensionPrecipitation, 10, 0, "cm"},
	Meters:               {DimensionDistance, 1, 0, "m"},
	Kilometers:           {DimensionDistance, 1000, 0, "km"},
	KilometersPerHour:    {DimensionSpeed, 1 / 3.6, 0, "km/h"},
	Knots:                {DimensionSpeed, 1852.0 / 3600.0, 0, "kt"},
	MilesPerHour:         {DimensionSpeed, 0.44704, 0, "mi/h"},
	MetersPerSecond:      {DimensionSpeed, 1, 0, "m/s"},
	Hectopascals:         {DimensionPressure, 1, 0, "hPa"},
	InchesOfMercury:      {DimensionPressure, 33.8638866667, 0, "inHg"},
	Kilopascals:          {DimensionPressure, 10, 0, "kPa"},
	Millibars:            {DimensionPressure, 1, 0, "mb"},
	MillimetersOfMercury: {DimensionPressure, 1.33322387415, 0, "mmHg"},
	PoundsPerSquareInch:  {DimensionPressure, 68.9475729318, 0, "psi"},
	Celsius:              {DimensionTemperature, 1, 0, "C"},
	Fahrenheit:           {DimensionTemperature, 5.0 / 9.0, -32 * 5.0 / 9.0, "F"},
	Kelvin:               {DimensionTemperature, 1, -273.15, "K"},
	Percent:              {DimensionRatio, 1, 0, "%"},
	Float:                {DimensionRatio, 1, 0, ""},
	Integer:              {DimensionRatio, 1, 0, ""},
}

// Valid reports whether c is a known unit code.
func (c Code) Valid() bool {
	_, ok := codes[c]
	return ok
}

// Dimension returns the physical dimension of the code.
func (c Code) Dimension() Dimension {
	return codes[c].dimension
}

// Symbol returns the short textual symbol of the code.
func (c Code) Symbol() string {
	return codes[c].symbol
}

// ToCanonical converts a value expressed in code c to the canonical unit of
// its dimension. A nil value stays nil. Unknown codes pass the value through.
func ToCanonical(value *float64, c Code) *float64 {
	if value == nil {
		return nil
	}
	info, ok := codes[c]
	if !ok {
		v := *value
		return &v
	}
	v := *value*info.scale + info.offset
	return &v
}

// FromCanonical converts a canonical value to code c.
func FromCanonical(value *float64, c Code) *float64 {
	if value == nil {
		return nil
	}
	info, ok := codes[c]
	if !ok {
		v := *value
		return &v
	}
	v := (*value - info.offset) / info.scale
	return &v
}

// Convert is ToCanonical for non-pointer values.
func Convert(value float64, c Code) float64 {
	return *ToCanonical(&value, c)
}

// CodeOf returns the code for a raw vendor unit-type number. Absent or
// unrecognized numbers yield fallback, which callers set to the metric code
// of the expected dimension.
func CodeOf(raw *int, fallback Code) Code {
	if raw == nil {
		return fallback
	}
	c := Code(*raw)
	if !c.Valid() {
		return fallback
	}
	return c
}

var tags = map[string]Code{
	"c":      Celsius,
	"°c":     Celsius,
	"f":      Fahrenheit,
	"°f":     Fahrenheit,
	"k":      Kelvin,
	"km/h":   KilometersPerHour,
	"kmh":    KilometersPerHour,
	"kph":    KilometersPerHour,
	"mi/h":   MilesPerHour,
	"mph":    MilesPerHour,
	"kt":     Knots,
	"kn":     Knots,
	"knots":  Knots,
	"m/s":    MetersPerSecond,
	"ms":     MetersPerSecond,
	"mb":     Millibars,
	"mbar":   Millibars,
	"hpa":    Hectopascals,
	"kpa":    Kilopascals,
	"inhg":   InchesOfMercury,
	"mmhg":   MillimetersOfMercury,
	"psi":    PoundsPerSquareInch,
	"mm":     Millimeters,
	"cm":     Centimeters,
	"in":     Inches,
	"inch":   Inches,
	"km":     Kilometers,
	"mi":     Miles,
	"m":      Meters,
	"ft":     Feet,
	"%":      Percent,
	"pct":    Percent,
	"mm/h":   Millimeters,
	"in/h":   Inches,
	"mi/hr":  MilesPerHour,
	"km/hr":  KilometersPerHour,
	"meters": Meters,
}

// ParseCode maps a textual vendor unit tag to a code, falling back when the
// tag is absent or unrecognized.
func ParseCode(tag string, fallback Code) Code {
	if c, ok := tags[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return c
	}
	return fallback
}

// System is a vendor-level unit system flag.
type System int

const (
	Metric System = iota
	Imperial
)

func (s System) String() string {
	if s == Imperial {
		return "imperial"
	}
	return "metric"
}

// ParseSystem maps a vendor unit system tag. Anything it does not recognize
// as imperial is metric.
func ParseSystem(tag string) System {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "imperial", "us", "e", "english":
		return Imperial
	default:
		return Metric
	}
}

// Code returns the code a unit system uses for the given dimension.
func (s System) Code(d Dimension) Code {
	if s == Metric {
		switch d {
		case DimensionSpeed:
			return KilometersPerHour
		case DimensionDistance:
			return Kilometers
		default:
			return d.Canonical()
		}
	}
	switch d {
	case DimensionTemperature:
		return Fahrenheit
	case DimensionSpeed:
		return MilesPerHour
	case DimensionPressure:
		return InchesOfMercury
	case DimensionDistance:
		return Miles
	case DimensionPrecipitation:
		return Inches
	default:
		return d.Canonical()
	}
}

// Temperature converts a temperature reported in system s to °C.
func (s System) Temperature(v *float64) *float64 {
	return ToCanonical(v, s.Code(DimensionTemperature))
}

// Speed converts a speed reported in system s to m/s.
func (s System) Speed(v *float64) *float64 {
	return ToCanonical(v, s.Code(DimensionSpeed))
}

// Pressure converts a pressure reported in system s to hPa.
func (s System) Pressure(v *float64) *float64 {
	return ToCanonical(v, s.Code(DimensionPressure))
}

// Distance converts a distance reported in system s to m.
func (s System) Distance(v *float64) *float64 {
	return ToCanonical(v, s.Code(DimensionDistance))
}

// Precipitation converts a precipitation amount reported in system s to mm.
func (s System) Precipitation(v *float64) *float64 {
	return ToCanonical(v, s.Code(DimensionPrecipitation))
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
