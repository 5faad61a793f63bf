package accuweather

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/pollen"
	"github.com/nimbusweather/nimbus/internal/units"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// inputs carries every response of one request. Optional responses are nil
// when not requested or failed.
type inputs struct {
	current    []CurrentConditions
	daily      *DailyForecastResponse
	hourly     []HourlyForecast
	minuteCast *MinuteCastResponse
	alerts     []AlertResponse
	airQuality *AirQualityResponse
	climo      *ClimoResponse
	month      time.Month
}

// convert maps a full forecast. The daily and hourly forecasts are
// mandatory.
func convert(in inputs, features weather.Features, tz *time.Location) (*weather.Wrapper, error) {
	if in.daily == nil || len(in.daily.DailyForecasts) == 0 || len(in.hourly) == 0 {
		return nil, fmt.Errorf("%w: accuweather: empty daily or hourly forecast", weather.ErrInvalidData)
	}

	w := convertSecondary(in, features, tz)
	aq := airQualityByHour(in.airQuality)

	w.Daily = make([]weather.Daily, 0, len(in.daily.DailyForecasts))
	for _, d := range in.daily.DailyForecasts {
		daily := convertDaily(d, tz)
		if !features.Has(weather.FeaturePollen) {
			daily.Pollen = nil
		}
		w.Daily = append(w.Daily, daily)
	}

	w.Hourly = make([]weather.Hourly, 0, len(in.hourly))
	for _, h := range in.hourly {
		hourly := convertHourly(h)
		hourly.AirQuality = aq[h.EpochDateTime-h.EpochDateTime%3600]
		w.Hourly = append(w.Hourly, hourly)
	}

	if features.Has(weather.FeatureCurrent) && len(in.current) > 0 {
		var current *airquality.AirQuality
		if w.Current != nil {
			current = w.Current.AirQuality
		}
		w.Current = convertCurrent(in.current[0], in.daily.Headline.Text)
		w.Current.AirQuality = current
	}
	return w, nil
}

// convertSecondary maps the optional features. Pollen is read from the
// daily forecast when one is present.
func convertSecondary(in inputs, features weather.Features, tz *time.Location) *weather.Wrapper {
	w := &weather.Wrapper{}

	if features.Has(weather.FeatureAirQuality) && in.airQuality != nil && len(in.airQuality.Data) > 0 {
		w.Current = &weather.Current{AirQuality: airQualityOf(in.airQuality.Data[0].Pollutants)}
	}
	if features.Has(weather.FeaturePollen) && in.daily != nil {
		for _, d := range in.daily.DailyForecasts {
			if pl := convertPollen(d.AirAndPollen); pl != nil {
				w.Daily = append(w.Daily, weather.Daily{
					Date:   weather.LocalMidnight(time.Unix(d.EpochDate, 0), tz),
					Pollen: pl,
				})
			}
		}
	}
	if features.Has(weather.FeatureMinutely) && in.minuteCast != nil {
		w.Minutely = convertMinutely(in.minuteCast)
	}
	if features.Has(weather.FeatureAlert) && in.alerts != nil {
		w.Alerts = convertAlerts(in.alerts)
	}
	if features.Has(weather.FeatureNormals) && in.climo != nil && in.climo.Normals != nil {
		t := in.climo.Normals.Temperatures
		w.Normals = &weather.Normals{
			Month:                in.month,
			DaytimeTemperature:   measure(t.Maximum, units.Celsius),
			NighttimeTemperature: measure(t.Minimum, units.Celsius),
		}
	}
	return w
}

// canonical converts a tagged value. fallback is the metric code of the
// expected dimension.
func canonical(v *Value, fallback units.Code) *float64 {
	if v == nil {
		return nil
	}
	return units.ToCanonical(v.Value, units.CodeOf(v.UnitType, fallback))
}

// measure prefers the metric block.
func measure(m *Measure, fallback units.Code) *float64 {
	if m == nil {
		return nil
	}
	if m.Metric != nil {
		return canonical(m.Metric, fallback)
	}
	return canonical(m.Imperial, fallback)
}

func convertCurrent(c CurrentConditions, summary string) *weather.Current {
	current := &weather.Current{
		WeatherText: c.WeatherText,
		WeatherCode: IconCode(c.WeatherIcon),
		Temperature: &weather.Temperature{
			Temperature:         measure(c.Temperature, units.Celsius),
			RealFeel:            measure(c.RealFeelTemperature, units.Celsius),
			RealFeelShade:       measure(c.RealFeelTemperatureShade, units.Celsius),
			ApparentTemperature: measure(c.ApparentTemperature, units.Celsius),
			WindChill:           measure(c.WindChillTemperature, units.Celsius),
			WetBulbTemperature:  measure(c.WetBulbTemperature, units.Celsius),
		},
		UVIndex:          c.UVIndex,
		RelativeHumidity: c.RelativeHumidity,
		DewPoint:         measure(c.DewPoint, units.Celsius),
		Pressure:         measure(c.Pressure, units.Hectopascals),
		CloudCover:       c.CloudCover,
		Visibility:       measure(c.Visibility, units.Kilometers),
		CeilingHeight:    measure(c.Ceiling, units.Meters),
		DailyForecast:    summary,
	}
	if c.Wind != nil {
		current.Wind = &weather.Wind{Speed: measure(c.Wind.Speed, units.KilometersPerHour)}
		if c.Wind.Direction != nil {
			current.Wind.Degree = c.Wind.Direction.Degrees
		}
		if c.WindGust != nil {
			current.Wind.Gusts = measure(c.WindGust.Speed, units.KilometersPerHour)
		}
	}
	return current
}

func convertWind(w, gust *Wind) *weather.Wind {
	if w == nil {
		return nil
	}
	out := &weather.Wind{Speed: canonical(w.Speed, units.KilometersPerHour)}
	if w.Direction != nil {
		out.Degree = w.Direction.Degrees
	}
	if gust != nil {
		out.Gusts = canonical(gust.Speed, units.KilometersPerHour)
	}
	return out
}

func precipitation(total, rain, snow, ice *Value) *weather.Precipitation {
	p := &weather.Precipitation{
		Total: canonical(total, units.Millimeters),
		Rain:  canonical(rain, units.Millimeters),
		Snow:  canonical(snow, units.Millimeters),
		Ice:   canonical(ice, units.Millimeters),
	}
	if p.Total == nil && p.Rain == nil && p.Snow == nil && p.Ice == nil {
		return nil
	}
	return p
}

func probability(total, thunder, rain, snow, ice *float64) *weather.Precipitation {
	if total == nil && thunder == nil && rain == nil && snow == nil && ice == nil {
		return nil
	}
	return &weather.Precipitation{Total: total, Thunderstorm: thunder, Rain: rain, Snow: snow, Ice: ice}
}

func convertHalfDay(h *HalfDay, temperature, realFeel, realFeelShade *Value) *weather.HalfDay {
	if h == nil {
		return nil
	}
	half := &weather.HalfDay{
		WeatherText: h.LongPhrase,
		WeatherCode: IconCode(h.Icon),
		Temperature: &weather.Temperature{
			Temperature:   canonical(temperature, units.Celsius),
			RealFeel:      canonical(realFeel, units.Celsius),
			RealFeelShade: canonical(realFeelShade, units.Celsius),
		},
		Precipitation: precipitation(h.TotalLiquid, h.Rain, h.Snow, h.Ice),
		PrecipitationProbability: probability(h.PrecipitationProbability, h.ThunderstormProbability,
			h.RainProbability, h.SnowProbability, h.IceProbability),
		PrecipitationDuration: probability(h.HoursOfPrecipitation, nil, h.HoursOfRain, h.HoursOfSnow, h.HoursOfIce),
		Wind:                  convertWind(h.Wind, h.WindGust),
		CloudCover:            h.CloudCover,
	}
	if half.WeatherText == "" {
		half.WeatherText = h.IconPhrase
	}
	return half
}

func convertDaily(d DailyForecast, tz *time.Location) weather.Daily {
	daily := weather.Daily{
		Date: weather.LocalMidnight(time.Unix(d.EpochDate, 0), tz),
		Day: convertHalfDay(d.Day, d.Temperature.Maximum,
			d.RealFeelTemperature.Maximum, d.RealFeelTemperatureShade.Maximum),
		Night: convertHalfDay(d.Night, d.Temperature.Minimum,
			d.RealFeelTemperature.Minimum, d.RealFeelTemperatureShade.Minimum),
		Sunrise:          weather.UnixTime(d.Sun.EpochRise),
		Sunset:           weather.UnixTime(d.Sun.EpochSet),
		SunshineDuration: d.HoursOfSun,
		Pollen:           convertPollen(d.AirAndPollen),
	}
	if heating, cooling := degreeDays(d.DegreeDaySummary.Heating), degreeDays(d.DegreeDaySummary.Cooling); heating != nil || cooling != nil {
		daily.DegreeDay = &weather.DegreeDay{Heating: heating, Cooling: cooling}
	}
	for _, entry := range d.AirAndPollen {
		if entry.Name == "UVIndex" && entry.Value != nil {
			daily.UV = &weather.UV{Index: entry.Value}
		}
	}
	return daily
}

// degreeDays converts a temperature difference, which takes no offset.
func degreeDays(v *Value) *float64 {
	if v == nil || v.Value == nil {
		return nil
	}
	if units.CodeOf(v.UnitType, units.Celsius) == units.Fahrenheit {
		return weather.Scale(v.Value, 5.0/9)
	}
	return v.Value
}

var allergens = map[string]pollen.Allergen{
	"Grass":   pollen.Grass,
	"Mold":    pollen.Mold,
	"Ragweed": pollen.Ragweed,
	"Tree":    pollen.Tree,
}

func convertPollen(entries []AirAndPollen) *pollen.Pollen {
	pl := &pollen.Pollen{}
	for _, e := range entries {
		if a, ok := allergens[e.Name]; ok {
			pl.Set(a, e.Value)
		}
	}
	if !pl.IsValid() {
		return nil
	}
	return pl
}

func convertHourly(h HourlyForecast) weather.Hourly {
	return weather.Hourly{
		Date:        time.Unix(h.EpochDateTime, 0).UTC(),
		IsDaylight:  h.IsDaylight,
		WeatherText: h.IconPhrase,
		WeatherCode: IconCode(h.WeatherIcon),
		Temperature: &weather.Temperature{
			Temperature:        canonical(h.Temperature, units.Celsius),
			RealFeel:           canonical(h.RealFeelTemperature, units.Celsius),
			RealFeelShade:      canonical(h.RealFeelTemperatureShade, units.Celsius),
			WetBulbTemperature: canonical(h.WetBulbTemperature, units.Celsius),
		},
		Precipitation: precipitation(h.TotalLiquid, h.Rain, h.Snow, h.Ice),
		PrecipitationProbability: probability(h.PrecipitationProbability, h.ThunderstormProbability,
			h.RainProbability, h.SnowProbability, h.IceProbability),
		Wind:             convertWind(h.Wind, h.WindGust),
		UVIndex:          h.UVIndex,
		RelativeHumidity: h.RelativeHumidity,
		DewPoint:         canonical(h.DewPoint, units.Celsius),
		CloudCover:       h.CloudCover,
		Visibility:       canonical(h.Visibility, units.Kilometers),
	}
}

// convertMinutely turns the radar reflectivity of each interval into rain
// intensity.
func convertMinutely(mc *MinuteCastResponse) []weather.Minutely {
	offsets := make([]int, len(mc.Intervals))
	for i, iv := range mc.Intervals {
		offsets[i] = iv.Minute
	}
	intervals := weather.InferMinuteIntervals(offsets, 1)

	out := make([]weather.Minutely, 0, len(mc.Intervals))
	for i, iv := range mc.Intervals {
		out = append(out, weather.Minutely{
			Date:                   time.Unix(iv.StartEpochDateTime, 0).UTC(),
			MinuteInterval:         intervals[i],
			PrecipitationIntensity: units.RainRate(iv.Dbz),
		})
	}
	return out
}

func convertAlerts(alerts []AlertResponse) []weather.Alert {
	out := make([]weather.Alert, 0, len(alerts))
	for _, a := range alerts {
		alert := weather.Alert{
			AlertID:  strconv.FormatInt(a.AlertID, 10),
			Headline: a.Description.Localized,
			Source:   a.Source,
			Severity: Severity(a.Level),
		}
		if len(a.Area) > 0 {
			area := a.Area[0]
			alert.Description = area.Text
			if alert.Description == "" {
				alert.Description = area.Summary
			}
			alert.StartDate = weather.UnixTime(area.EpochStartTime)
			alert.EndDate = weather.UnixTime(area.EpochEndTime)
		}
		out = append(out, alert)
	}
	return out
}

// Severity maps an alert level, which is either a severity or a warning
// color.
func Severity(level string) weather.AlertSeverity {
	switch strings.ToLower(level) {
	case "extreme", "red":
		return weather.SeverityExtreme
	case "severe", "orange":
		return weather.SeveritySevere
	case "moderate", "yellow":
		return weather.SeverityModerate
	case "minor", "green":
		return weather.SeverityMinor
	default:
		return weather.SeverityUnknown
	}
}

func airQualityOf(pollutants []Pollutant) *airquality.AirQuality {
	aq := &airquality.AirQuality{}
	for _, p := range pollutants {
		v := p.Concentration.Value
		switch p.Type {
		case "PM2_5":
			aq.PM25 = v
		case "PM10":
			aq.PM10 = v
		case "SO2":
			aq.SO2 = v
		case "NO2":
			aq.NO2 = v
		case "O3":
			aq.O3 = v
		case "CO":
			aq.CO = weather.Scale(v, 0.001)
		}
	}
	if !aq.IsValid() {
		return nil
	}
	return aq
}

func airQualityByHour(resp *AirQualityResponse) map[int64]*airquality.AirQuality {
	out := make(map[int64]*airquality.AirQuality)
	if resp == nil {
		return out
	}
	for _, entry := range resp.Data {
		if aq := airQualityOf(entry.Pollutants); aq != nil {
			out[entry.EpochDate-entry.EpochDate%3600] = aq
		}
	}
	return out
}

// IconCode maps AccuWeather icon numbers 1-44. Azure Maps uses the same
// numbering.
func IconCode(icon *int) *weather.Code {
	if icon == nil {
		return nil
	}
	var c weather.Code
	switch *icon {
	case 1, 2, 30, 31, 33, 34:
		c = weather.CodeClear
	case 3, 4, 6, 35, 36:
		c = weather.CodePartlyCloudy
	case 7, 8, 38:
		c = weather.CodeCloudy
	case 5, 37:
		c = weather.CodeHaze
	case 11:
		c = weather.CodeFog
	case 12, 13, 14, 18, 39, 40:
		c = weather.CodeRain
	case 15, 16, 17, 41, 42:
		c = weather.CodeThunderstorm
	case 19, 20, 21, 22, 23, 43, 44:
		c = weather.CodeSnow
	case 24, 25, 26, 29:
		c = weather.CodeSleet
	case 32:
		c = weather.CodeWind
	default:
		return nil
	}
	return &c
}
