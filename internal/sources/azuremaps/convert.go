package azuremaps

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/sources/accuweather"
	"github.com/nimbusweather/nimbus/internal/units"
	"github.com/nimbusweather/nimbus/internal/weather"
)

type inputs struct {
	current    *CurrentResponse
	daily      *DailyResponse
	hourly     *HourlyResponse
	minute     *MinuteResponse
	alerts     *AlertsResponse
	airQuality *AirQualityResponse
}

// convert maps a full forecast. The daily and hourly forecasts are
// mandatory.
func convert(in inputs, features weather.Features, tz *time.Location) (*weather.Wrapper, error) {
	if in.daily == nil || len(in.daily.Forecasts) == 0 || in.hourly == nil || len(in.hourly.Forecasts) == 0 {
		return nil, fmt.Errorf("%w: azuremaps: empty daily or hourly forecast", weather.ErrInvalidData)
	}

	w := convertSecondary(in, features)
	aq := airQualityByHour(in.airQuality)
	var currentAQ *airquality.AirQuality
	if w.Current != nil {
		currentAQ = w.Current.AirQuality
		w.Current = nil
	}

	w.Daily = make([]weather.Daily, 0, len(in.daily.Forecasts))
	for _, d := range in.daily.Forecasts {
		w.Daily = append(w.Daily, convertDaily(d, tz))
	}
	w.Hourly = make([]weather.Hourly, 0, len(in.hourly.Forecasts))
	for _, h := range in.hourly.Forecasts {
		hourly := convertHourly(h)
		hourly.AirQuality = aq[h.Date.Truncate(time.Hour).Unix()]
		w.Hourly = append(w.Hourly, hourly)
	}

	if features.Has(weather.FeatureCurrent) && in.current != nil && len(in.current.Results) > 0 {
		w.Current = convertCurrent(in.current.Results[0], in.daily.Summary.Phrase)
	}
	if currentAQ != nil {
		if w.Current == nil {
			w.Current = &weather.Current{}
		}
		w.Current.AirQuality = currentAQ
	}
	return w, nil
}

func convertSecondary(in inputs, features weather.Features) *weather.Wrapper {
	w := &weather.Wrapper{}
	if features.Has(weather.FeatureAirQuality) && in.airQuality != nil {
		for _, entry := range in.airQuality.Results {
			if aq := airQualityOf(entry.Pollutants); aq != nil {
				w.Current = &weather.Current{AirQuality: aq}
				break
			}
		}
	}
	if features.Has(weather.FeatureMinutely) && in.minute != nil {
		w.Minutely = convertMinutely(in.minute)
	}
	if features.Has(weather.FeatureAlert) && in.alerts != nil {
		w.Alerts = convertAlerts(in.alerts.Results)
	}
	return w
}

func canonical(v *Value, fallback units.Code) *float64 {
	if v == nil {
		return nil
	}
	return units.ToCanonical(v.Value, units.CodeOf(v.UnitType, fallback))
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

func convertCurrent(c Current, summary string) *weather.Current {
	return &weather.Current{
		WeatherText: c.Phrase,
		WeatherCode: accuweather.IconCode(c.IconCode),
		Temperature: &weather.Temperature{
			Temperature:         canonical(c.Temperature, units.Celsius),
			RealFeel:            canonical(c.RealFeelTemperature, units.Celsius),
			RealFeelShade:       canonical(c.RealFeelTemperatureShade, units.Celsius),
			ApparentTemperature: canonical(c.ApparentTemperature, units.Celsius),
			WindChill:           canonical(c.WindChillTemperature, units.Celsius),
			WetBulbTemperature:  canonical(c.WetBulbTemperature, units.Celsius),
		},
		Wind:             convertWind(c.Wind, c.WindGust),
		UVIndex:          c.UVIndex,
		RelativeHumidity: c.RelativeHumidity,
		DewPoint:         canonical(c.DewPoint, units.Celsius),
		Pressure:         canonical(c.Pressure, units.Hectopascals),
		CloudCover:       c.CloudCover,
		Visibility:       canonical(c.Visibility, units.Kilometers),
		CeilingHeight:    canonical(c.Ceiling, units.Meters),
		DailyForecast:    summary,
	}
}

func convertHalfDay(h *HalfDay, temperature, realFeel *Value) *weather.HalfDay {
	if h == nil {
		return nil
	}
	half := &weather.HalfDay{
		WeatherText: h.LongPhrase,
		WeatherCode: accuweather.IconCode(h.IconCode),
		Temperature: &weather.Temperature{
			Temperature: canonical(temperature, units.Celsius),
			RealFeel:    canonical(realFeel, units.Celsius),
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

func convertDaily(d Daily, tz *time.Location) weather.Daily {
	daily := weather.Daily{
		Date:             weather.LocalMidnight(d.Date, tz),
		Day:              convertHalfDay(d.Day, d.Temperature.Maximum, d.RealFeelTemperature.Maximum),
		Night:            convertHalfDay(d.Night, d.Temperature.Minimum, d.RealFeelTemperature.Minimum),
		SunshineDuration: d.HoursOfSun,
	}
	heating := degreeDays(d.DegreeDaySummary.Heating)
	cooling := degreeDays(d.DegreeDaySummary.Cooling)
	if heating != nil || cooling != nil {
		daily.DegreeDay = &weather.DegreeDay{Heating: heating, Cooling: cooling}
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

func convertHourly(h Hourly) weather.Hourly {
	return weather.Hourly{
		Date:        h.Date.UTC(),
		IsDaylight:  h.IsDaylight,
		WeatherText: h.IconPhrase,
		WeatherCode: accuweather.IconCode(h.IconCode),
		Temperature: &weather.Temperature{
			Temperature:        canonical(h.Temperature, units.Celsius),
			RealFeel:           canonical(h.RealFeelTemperature, units.Celsius),
			WetBulbTemperature: canonical(h.WetBulbTemperature, units.Celsius),
		},
		Precipitation: precipitation(h.TotalLiquid, h.Rain, h.Snow, h.Ice),
		PrecipitationProbability: probability(h.PrecipitationProbability, nil,
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
func convertMinutely(resp *MinuteResponse) []weather.Minutely {
	offsets := make([]int, len(resp.Intervals))
	for i, iv := range resp.Intervals {
		offsets[i] = iv.Minute
	}
	intervals := weather.InferMinuteIntervals(offsets, 1)

	out := make([]weather.Minutely, 0, len(resp.Intervals))
	for i, iv := range resp.Intervals {
		out = append(out, weather.Minutely{
			Date:                   iv.StartTime.UTC(),
			MinuteInterval:         intervals[i],
			PrecipitationIntensity: units.RainRate(iv.Dbz),
		})
	}
	return out
}

func convertAlerts(alerts []Alert) []weather.Alert {
	out := make([]weather.Alert, 0, len(alerts))
	for _, a := range alerts {
		alert := weather.Alert{
			AlertID:  strconv.FormatInt(a.AlertID, 10),
			Headline: a.Description.Localized,
			Source:   a.Source,
			Severity: accuweather.Severity(a.Level),
		}
		if len(a.Areas) > 0 {
			area := a.Areas[0]
			alert.Description = area.Details
			if alert.Description == "" {
				alert.Description = area.Summary
			}
			if !area.StartTime.IsZero() {
				alert.StartDate = weather.Ptr(area.StartTime.UTC())
			}
			if !area.EndTime.IsZero() {
				alert.EndDate = weather.Ptr(area.EndTime.UTC())
			}
		}
		out = append(out, alert)
	}
	return out
}

// airQualityOf reads pollutant concentrations in µg/m³.
func airQualityOf(pollutants []Pollutant) *airquality.AirQuality {
	aq := &airquality.AirQuality{}
	for _, p := range pollutants {
		v := p.Concentration.Value
		switch p.Type {
		case "PM2.5", "PM2_5":
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
	for _, entry := range resp.Results {
		if aq := airQualityOf(entry.Pollutants); aq != nil {
			out[entry.DateTime.Truncate(time.Hour).Unix()] = aq
		}
	}
	return out
}
