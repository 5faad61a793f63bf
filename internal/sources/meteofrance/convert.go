package meteofrance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nimbusweather/nimbus/internal/weather"
)

// inputs carries every response of one request. Optional responses are nil
// when not requested or failed.
type inputs struct {
	forecast *ForecastResponse
	rain     *RainResponse
	warnings *WarningsResponse
	normals  *NormalsResponse
	month    time.Month
}

// convert maps the forecast. The daily and hourly forecasts are mandatory.
// Half days are bucketed from the hourly forecast; days past the hourly
// horizon are built from the daily forecast alone.
func convert(in inputs, features weather.Features, tz *time.Location) (*weather.Wrapper, error) {
	fc := in.forecast
	if fc == nil || len(fc.DailyForecast) == 0 || len(fc.Forecast) == 0 {
		return nil, fmt.Errorf("%w: meteofrance: empty daily or hourly forecast", weather.ErrInvalidData)
	}

	w := convertSecondary(in, features)
	rain, snow := schedules(fc.ProbabilityForecast)

	w.Hourly = make([]weather.Hourly, 0, len(fc.Forecast))
	for _, h := range fc.Forecast {
		w.Hourly = append(w.Hourly, convertHourly(h, rain, snow))
	}

	w.Daily = weather.BucketHalfDays(w.Hourly, tz)
	byDate := make(map[time.Time]int, len(w.Daily))
	for i, d := range w.Daily {
		byDate[d.Date] = i
	}
	for _, d := range fc.DailyForecast {
		date := weather.LocalMidnight(time.Unix(d.Dt, 0), tz)
		i, ok := byDate[date]
		if !ok {
			w.Daily = append(w.Daily, weather.Daily{
				Date:  date,
				Day:   &weather.HalfDay{Temperature: &weather.Temperature{Temperature: d.T.Max}},
				Night: &weather.HalfDay{Temperature: &weather.Temperature{Temperature: d.T.Min}},
			})
			i = len(w.Daily) - 1
			if d.Weather12H != nil {
				w.Daily[i].Day.WeatherText = d.Weather12H.Desc
				w.Daily[i].Day.WeatherCode = iconCode(d.Weather12H.Icon)
			}
		}
		overlayDaily(&w.Daily[i], d)
	}

	if features.Has(weather.FeatureCurrent) {
		w.Current = convertCurrent(fc.Forecast[0])
	}
	w.Normalize()
	return w, nil
}

// convertSecondary maps the nowcast, warnings and normals.
func convertSecondary(in inputs, features weather.Features) *weather.Wrapper {
	w := &weather.Wrapper{}
	if features.Has(weather.FeatureMinutely) && in.rain != nil {
		w.Minutely = convertMinutely(in.rain)
	}
	if features.Has(weather.FeatureAlert) && in.warnings != nil {
		w.Alerts = convertWarnings(in.warnings)
	}
	if features.Has(weather.FeatureNormals) && in.normals != nil {
		for _, n := range in.normals.Monthly {
			if time.Month(n.Month) == in.month {
				w.Normals = &weather.Normals{
					Month:                in.month,
					DaytimeTemperature:   n.T.Max,
					NighttimeTemperature: n.T.Min,
				}
			}
		}
	}
	return w
}

func overlayDaily(daily *weather.Daily, d DailyForecast) {
	daily.Sunrise = weather.UnixTime(d.Sun.Rise)
	daily.Sunset = weather.UnixTime(d.Sun.Set)
	if d.UV != nil {
		daily.UV = &weather.UV{Index: d.UV}
	}
	if d.Humidity.Min != nil || d.Humidity.Max != nil {
		daily.RelativeHumidity = &weather.DailyRange{Min: d.Humidity.Min, Max: d.Humidity.Max}
	}
	if daily.Day != nil && daily.Day.Temperature != nil && d.T.Max != nil {
		daily.Day.Temperature.Temperature = d.T.Max
	}
}

// amount returns the shortest accumulation window reported.
func amount(a Amounts) *float64 {
	for _, window := range []string{"1h", "3h", "6h"} {
		if v := a[window]; v != nil {
			return v
		}
	}
	return nil
}

// schedules splits the probability forecast into rain and snow schedules.
func schedules(entries []ProbabilityForecast) (rain, snow weather.ProbabilitySchedule) {
	for _, e := range entries {
		start := time.Unix(e.Dt, 0).UTC()
		rain = append(rain, weather.ProbabilityEntry{Start: start, ThreeHour: e.Rain["3h"], SixHour: e.Rain["6h"]})
		snow = append(snow, weather.ProbabilityEntry{Start: start, ThreeHour: e.Snow["3h"], SixHour: e.Snow["6h"]})
	}
	return rain, snow
}

func convertHourly(h HourlyForecast, rain, snow weather.ProbabilitySchedule) weather.Hourly {
	date := time.Unix(h.Dt, 0).UTC()
	hourly := weather.Hourly{
		Date: date,
		Temperature: &weather.Temperature{
			Temperature: h.T.Value,
			WindChill:   h.T.Windchill,
		},
		Wind: &weather.Wind{
			Degree: h.Wind.Direction,
			Speed:  h.Wind.Speed,
			Gusts:  h.Wind.Gust,
		},
		RelativeHumidity: h.Humidity,
		Pressure:         h.SeaLevel,
		CloudCover:       h.Clouds,
	}
	if h.Weather != nil {
		hourly.WeatherText = h.Weather.Desc
		hourly.WeatherCode = iconCode(h.Weather.Icon)
	}

	rainAmount, snowAmount := amount(h.Rain), amount(h.Snow)
	if rainAmount != nil || snowAmount != nil {
		hourly.Precipitation = &weather.Precipitation{
			Total: weather.Sum(rainAmount, snowAmount),
			Rain:  rainAmount,
			Snow:  snowAmount,
		}
	}
	rainProb, snowProb := rain.At(date), snow.At(date)
	if rainProb != nil || snowProb != nil {
		hourly.PrecipitationProbability = &weather.Precipitation{
			Total: weather.Max(rainProb, snowProb),
			Rain:  rainProb,
			Snow:  snowProb,
		}
	}
	return hourly
}

func convertCurrent(h HourlyForecast) *weather.Current {
	current := &weather.Current{
		Temperature: &weather.Temperature{
			Temperature: h.T.Value,
			WindChill:   h.T.Windchill,
		},
		Wind: &weather.Wind{
			Degree: h.Wind.Direction,
			Speed:  h.Wind.Speed,
			Gusts:  h.Wind.Gust,
		},
		RelativeHumidity: h.Humidity,
		Pressure:         h.SeaLevel,
		CloudCover:       h.Clouds,
	}
	if h.Weather != nil {
		current.WeatherText = h.Weather.Desc
		current.WeatherCode = iconCode(h.Weather.Icon)
	}
	return current
}

// rainIntensity maps nowcast levels to mm/h.
func rainIntensity(level int) float64 {
	switch level {
	case 4:
		return 10
	case 3:
		return 5.5
	case 2:
		return 2
	default:
		return 0
	}
}

func convertMinutely(resp *RainResponse) []weather.Minutely {
	if len(resp.Forecast) == 0 {
		return []weather.Minutely{}
	}
	start := resp.Forecast[0].Dt
	offsets := make([]int, len(resp.Forecast))
	for i, f := range resp.Forecast {
		offsets[i] = int(f.Dt-start) / 60
	}
	intervals := weather.InferMinuteIntervals(offsets, 5)

	out := make([]weather.Minutely, 0, len(resp.Forecast))
	for i, f := range resp.Forecast {
		out = append(out, weather.Minutely{
			Date:                   time.Unix(f.Dt, 0).UTC(),
			MinuteInterval:         intervals[i],
			PrecipitationIntensity: weather.Ptr(rainIntensity(f.Rain)),
		})
	}
	return out
}

var phenomenons = map[string]string{
	"1": "Wind",
	"2": "Rain and flooding",
	"3": "Thunderstorms",
	"4": "Flooding",
	"5": "Snow and ice",
	"6": "Heat wave",
	"7": "Extreme cold",
	"8": "Avalanches",
	"9": "Waves and submersion",
}

// convertWarnings turns every phenomenon above green into an alert.
func convertWarnings(resp *WarningsResponse) []weather.Alert {
	alerts := make([]weather.Alert, 0, len(resp.PhenomenonsItems))
	for _, p := range resp.PhenomenonsItems {
		sev := colorSeverity(p.PhenomenonMaxColorID)
		if sev == "" {
			continue
		}
		headline, ok := phenomenons[p.PhenomenonID]
		if !ok {
			headline = "Phenomenon " + p.PhenomenonID
		}
		alerts = append(alerts, weather.Alert{
			AlertID:   resp.DomainID + "-" + p.PhenomenonID,
			StartDate: weather.UnixTime(resp.UpdateTime),
			EndDate:   weather.UnixTime(resp.EndValidityTime),
			Headline:  headline,
			Source:    "Météo-France",
			Severity:  sev,
		})
	}
	return alerts
}

// colorSeverity maps vigilance colors. Green carries no alert.
func colorSeverity(color int) weather.AlertSeverity {
	switch color {
	case 4:
		return weather.SeverityExtreme
	case 3:
		return weather.SeveritySevere
	case 2:
		return weather.SeverityModerate
	default:
		return ""
	}
}

// iconCode maps pictogram names such as "p3j" or "p24bisn".
func iconCode(icon string) *weather.Code {
	name := strings.TrimPrefix(icon, "p")
	name = strings.TrimRight(name, "jn")
	name = strings.TrimSuffix(name, "bis")
	n, err := strconv.Atoi(name)
	if err != nil {
		return nil
	}

	var c weather.Code
	switch {
	case n == 1:
		c = weather.CodeClear
	case n == 2 || n == 3:
		c = weather.CodePartlyCloudy
	case n == 4 || n == 5:
		c = weather.CodeCloudy
	case n >= 6 && n <= 8:
		c = weather.CodeFog
	case n >= 9 && n <= 15:
		c = weather.CodeRain
	case n == 16 || (n >= 24 && n <= 29):
		c = weather.CodeThunderstorm
	case n == 17 || n == 18:
		c = weather.CodeSleet
	case n >= 19 && n <= 23:
		c = weather.CodeSnow
	case n == 30 || n == 31:
		c = weather.CodeHaze
	case n == 32:
		c = weather.CodeWind
	default:
		return nil
	}
	return &c
}
