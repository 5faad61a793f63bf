package openweathermap

import (
	"fmt"
	"time"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/units"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// convert maps a One Call response plus the optional air pollution forecast.
// The daily and hourly sections are mandatory.
func convert(oc *OneCallResponse, pollution *AirPollutionResponse, features weather.Features, system units.System, tz *time.Location) (*weather.Wrapper, error) {
	if oc == nil || len(oc.Daily) == 0 || len(oc.Hourly) == 0 {
		return nil, fmt.Errorf("%w: openweathermap: empty daily or hourly forecast", weather.ErrInvalidData)
	}

	aq := airQualityByTime(pollution)

	w := &weather.Wrapper{
		Daily:  make([]weather.Daily, 0, len(oc.Daily)),
		Hourly: make([]weather.Hourly, 0, len(oc.Hourly)),
	}

	if features.Has(weather.FeatureCurrent) && oc.Current != nil {
		w.Current = convertCurrent(oc.Current, system)
	}
	if features.Has(weather.FeatureAirQuality) && pollution != nil && len(pollution.List) > 0 {
		if w.Current == nil {
			w.Current = &weather.Current{}
		}
		w.Current.AirQuality = aq[pollution.List[0].Dt]
	}

	for _, d := range oc.Daily {
		w.Daily = append(w.Daily, convertDaily(d, system, tz))
	}
	for _, h := range oc.Hourly {
		hourly := convertHourly(h, system)
		hourly.AirQuality = aq[h.Dt]
		w.Hourly = append(w.Hourly, hourly)
	}

	if features.Has(weather.FeatureMinutely) {
		w.Minutely = convertMinutely(oc.Minutely)
	}
	if features.Has(weather.FeatureAlert) {
		w.Alerts = convertAlerts(oc.Alerts)
	}
	return w, nil
}

// convertSecondary maps the sections requested from OpenWeatherMap as a
// secondary source. Nothing is mandatory.
func convertSecondary(oc *OneCallResponse, pollution *AirPollutionResponse, features weather.Features) *weather.Wrapper {
	w := &weather.Wrapper{}

	if features.Has(weather.FeatureAirQuality) && pollution != nil && len(pollution.List) > 0 {
		aq := airQualityByTime(pollution)
		w.Current = &weather.Current{AirQuality: aq[pollution.List[0].Dt]}
		for _, entry := range pollution.List {
			w.Hourly = append(w.Hourly, weather.Hourly{
				Date:       time.Unix(entry.Dt, 0).UTC(),
				AirQuality: aq[entry.Dt],
			})
		}
	}
	if oc != nil {
		if features.Has(weather.FeatureMinutely) {
			w.Minutely = convertMinutely(oc.Minutely)
		}
		if features.Has(weather.FeatureAlert) {
			w.Alerts = convertAlerts(oc.Alerts)
		}
	}
	return w
}

func condition(conditions []Condition) (string, *weather.Code) {
	if len(conditions) == 0 {
		return "", nil
	}
	return conditions[0].Description, weatherCode(conditions[0].ID)
}

func precipitation(rain, snow *float64) *weather.Precipitation {
	total := weather.Sum(rain, snow)
	if total == nil {
		return nil
	}
	return &weather.Precipitation{Total: total, Rain: rain, Snow: snow}
}

func volume(v *Volume) *float64 {
	if v == nil {
		return nil
	}
	return v.OneHour
}

func convertCurrent(c *CurrentData, system units.System) *weather.Current {
	text, code := condition(c.Weather)
	return &weather.Current{
		WeatherText: text,
		WeatherCode: code,
		Temperature: &weather.Temperature{
			Temperature:         system.Temperature(c.Temp),
			ApparentTemperature: system.Temperature(c.FeelsLike),
		},
		Wind: &weather.Wind{
			Degree: c.WindDeg,
			Speed:  speed(c.WindSpeed, system),
			Gusts:  speed(c.WindGust, system),
		},
		UVIndex:          c.UVI,
		RelativeHumidity: c.Humidity,
		DewPoint:         system.Temperature(c.DewPoint),
		Pressure:         c.Pressure,
		CloudCover:       c.Clouds,
		Visibility:       c.Visibility,
	}
}

// speed converts wind speeds, which OpenWeatherMap reports in m/s for
// metric and mph for imperial.
func speed(v *float64, system units.System) *float64 {
	if system == units.Imperial {
		return units.ToCanonical(v, units.MilesPerHour)
	}
	return v
}

func convertHourly(h HourlyData, system units.System) weather.Hourly {
	text, code := condition(h.Weather)
	return weather.Hourly{
		Date:        time.Unix(h.Dt, 0).UTC(),
		WeatherText: text,
		WeatherCode: code,
		Temperature: &weather.Temperature{
			Temperature:         system.Temperature(h.Temp),
			ApparentTemperature: system.Temperature(h.FeelsLike),
		},
		Precipitation:            precipitation(volume(h.Rain), volume(h.Snow)),
		PrecipitationProbability: probability(h.Pop),
		Wind: &weather.Wind{
			Degree: h.WindDeg,
			Speed:  speed(h.WindSpeed, system),
			Gusts:  speed(h.WindGust, system),
		},
		UVIndex:          h.UVI,
		RelativeHumidity: h.Humidity,
		DewPoint:         system.Temperature(h.DewPoint),
		Pressure:         h.Pressure,
		CloudCover:       h.Clouds,
		Visibility:       h.Visibility,
	}
}

func probability(pop *float64) *weather.Precipitation {
	if pop == nil {
		return nil
	}
	return &weather.Precipitation{Total: weather.Scale(pop, 100)}
}

func convertDaily(d DailyData, system units.System, tz *time.Location) weather.Daily {
	text, code := condition(d.Weather)
	wind := &weather.Wind{
		Degree: d.WindDeg,
		Speed:  speed(d.WindSpeed, system),
		Gusts:  speed(d.WindGust, system),
	}

	half := func(temp, feels *float64) *weather.HalfDay {
		return &weather.HalfDay{
			WeatherText: text,
			WeatherCode: code,
			Temperature: &weather.Temperature{
				Temperature:         system.Temperature(temp),
				ApparentTemperature: system.Temperature(feels),
			},
			Precipitation:            precipitation(d.Rain, d.Snow),
			PrecipitationProbability: probability(d.Pop),
			Wind:                     wind,
			CloudCover:               d.Clouds,
		}
	}

	daily := weather.Daily{
		Date:    weather.LocalMidnight(time.Unix(d.Dt, 0), tz),
		Day:     half(d.Temp.Max, d.FeelsLike.Day),
		Night:   half(d.Temp.Min, d.FeelsLike.Night),
		Sunrise: weather.UnixTime(d.Sunrise),
		Sunset:  weather.UnixTime(d.Sunset),
	}
	if d.UVI != nil {
		daily.UV = &weather.UV{Index: d.UVI}
	}
	if d.Humidity != nil {
		daily.RelativeHumidity = &weather.DailyRange{Average: d.Humidity}
	}
	if d.Pressure != nil {
		daily.Pressure = &weather.DailyRange{Average: d.Pressure}
	}
	if d.DewPoint != nil {
		daily.DewPoint = &weather.DailyRange{Average: system.Temperature(d.DewPoint)}
	}
	return daily
}

// convertMinutely keeps an explicitly empty section non-nil.
func convertMinutely(entries []MinutelyData) []weather.Minutely {
	if entries == nil {
		return nil
	}
	out := make([]weather.Minutely, 0, len(entries))
	for _, m := range entries {
		out = append(out, weather.Minutely{
			Date:                   time.Unix(m.Dt, 0).UTC(),
			MinuteInterval:         1,
			PrecipitationIntensity: m.Precipitation,
		})
	}
	return out
}

// convertAlerts returns an empty list when the response has none: One Call
// omits the section when no alert is active.
func convertAlerts(entries []AlertData) []weather.Alert {
	out := make([]weather.Alert, 0, len(entries))
	for _, a := range entries {
		out = append(out, weather.Alert{
			AlertID:     fmt.Sprintf("%d-%s", a.Start, a.Event),
			StartDate:   weather.UnixTime(a.Start),
			EndDate:     weather.UnixTime(a.End),
			Headline:    a.Event,
			Description: a.Description,
			Source:      a.SenderName,
			Severity:    weather.SeverityUnknown,
		})
	}
	return out
}

func airQualityByTime(resp *AirPollutionResponse) map[int64]*airquality.AirQuality {
	out := make(map[int64]*airquality.AirQuality)
	if resp == nil {
		return out
	}
	for _, entry := range resp.List {
		c := entry.Components
		aq := &airquality.AirQuality{
			PM25: c.PM25,
			PM10: c.PM10,
			SO2:  c.SO2,
			NO2:  c.NO2,
			O3:   c.O3,
			CO:   weather.Scale(c.CO, 0.001),
		}
		if aq.IsValid() {
			out[entry.Dt] = aq
		}
	}
	return out
}

// weatherCode maps OpenWeatherMap condition ids.
func weatherCode(id int) *weather.Code {
	var c weather.Code
	switch {
	case id >= 200 && id < 300:
		c = weather.CodeThunderstorm
	case id >= 300 && id < 400:
		c = weather.CodeRain
	case id == 511:
		c = weather.CodeSleet
	case id >= 500 && id < 600:
		c = weather.CodeRain
	case id >= 611 && id <= 616:
		c = weather.CodeSleet
	case id >= 600 && id < 700:
		c = weather.CodeSnow
	case id == 701 || id == 741:
		c = weather.CodeFog
	case id == 711 || id == 721 || id == 731 || id == 751 || id == 761 || id == 762:
		c = weather.CodeHaze
	case id == 771 || id == 781:
		c = weather.CodeWind
	case id == 800:
		c = weather.CodeClear
	case id == 801 || id == 802:
		c = weather.CodePartlyCloudy
	case id == 803 || id == 804:
		c = weather.CodeCloudy
	default:
		return nil
	}
	return &c
}
