package metno

import (
	"fmt"
	"strings"
	"time"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/weather"
)

// inputs carries every response of one request. Optional responses are nil
// when not requested or failed.
type inputs struct {
	forecast   *ForecastResponse
	nowcast    *ForecastResponse
	alerts     *AlertsResponse
	airQuality *AirQualityResponse
}

// convert maps the locationforecast timeseries. Daily entries are bucketed
// from the hourly stream.
func convert(in inputs, features weather.Features, tz *time.Location, now time.Time) (*weather.Wrapper, error) {
	if in.forecast == nil || len(in.forecast.Properties.Timeseries) == 0 {
		return nil, fmt.Errorf("%w: metno: empty timeseries", weather.ErrInvalidData)
	}
	series := in.forecast.Properties.Timeseries

	aq := airQualityByHour(in.airQuality)
	w := convertSecondary(in, features, now)

	// Entries without a 1-hour period summarize 6 hours and only feed the
	// half-day buckets.
	periods := make([]weather.Hourly, 0, len(series))
	w.Hourly = make([]weather.Hourly, 0, len(series))
	for _, ts := range series {
		h := convertHourly(ts)
		h.AirQuality = aq[ts.Time.UTC().Truncate(time.Hour)]
		periods = append(periods, h)
		if ts.Data.Next1Hours != nil {
			w.Hourly = append(w.Hourly, h)
		}
	}
	w.Daily = weather.BucketHalfDays(periods, tz)

	if features.Has(weather.FeatureCurrent) {
		current := w.Current
		w.Current = convertCurrent(series[0])
		if current != nil {
			w.Current.AirQuality = current.AirQuality
		}
	}
	return w, nil
}

// convertSecondary maps the nowcast, alerts and air quality responses.
func convertSecondary(in inputs, features weather.Features, now time.Time) *weather.Wrapper {
	w := &weather.Wrapper{}

	if features.Has(weather.FeatureAirQuality) {
		if current := currentAirQuality(in.airQuality, now); current != nil {
			w.Current = &weather.Current{AirQuality: current}
		}
	}
	if features.Has(weather.FeatureMinutely) && in.nowcast != nil {
		w.Minutely = convertMinutely(in.nowcast.Properties.Timeseries)
	}
	if features.Has(weather.FeatureAlert) && in.alerts != nil {
		w.Alerts = convertAlerts(in.alerts)
	}
	return w
}

func convertCurrent(ts Timeseries) *weather.Current {
	d := ts.Data.Instant.Details
	text, code := symbol(ts.Data.Next1Hours)
	return &weather.Current{
		WeatherText: text,
		WeatherCode: code,
		Temperature: &weather.Temperature{Temperature: d.AirTemperature},
		Wind: &weather.Wind{
			Degree: d.WindFromDirection,
			Speed:  d.WindSpeed,
			Gusts:  d.WindSpeedOfGust,
		},
		UVIndex:          d.UltravioletIndexClearSky,
		RelativeHumidity: d.RelativeHumidity,
		DewPoint:         d.DewPointTemperature,
		Pressure:         d.AirPressureAtSeaLevel,
		CloudCover:       d.CloudAreaFraction,
	}
}

// convertHourly maps one timeseries entry. Beyond the first days entries
// are 6 hours apart and only carry a 6-hour summary, whose amount is kept so
// half-day sums stay right.
func convertHourly(ts Timeseries) weather.Hourly {
	d := ts.Data.Instant.Details
	period := ts.Data.Next1Hours
	if period == nil {
		period = ts.Data.Next6Hours
	}
	text, code := symbol(period)

	h := weather.Hourly{
		Date:        ts.Time.UTC(),
		WeatherText: text,
		WeatherCode: code,
		Temperature: &weather.Temperature{Temperature: d.AirTemperature},
		Wind: &weather.Wind{
			Degree: d.WindFromDirection,
			Speed:  d.WindSpeed,
			Gusts:  d.WindSpeedOfGust,
		},
		UVIndex:          d.UltravioletIndexClearSky,
		RelativeHumidity: d.RelativeHumidity,
		DewPoint:         d.DewPointTemperature,
		Pressure:         d.AirPressureAtSeaLevel,
		CloudCover:       d.CloudAreaFraction,
	}
	if period != nil {
		if amount := period.Details.PrecipitationAmount; amount != nil {
			h.Precipitation = &weather.Precipitation{Total: amount}
		}
		p := period.Details
		if p.ProbabilityOfPrecipitation != nil || p.ProbabilityOfThunder != nil {
			h.PrecipitationProbability = &weather.Precipitation{
				Total:        p.ProbabilityOfPrecipitation,
				Thunderstorm: p.ProbabilityOfThunder,
			}
		}
	}
	return h
}

func convertMinutely(series []Timeseries) []weather.Minutely {
	if len(series) == 0 {
		return []weather.Minutely{}
	}
	start := series[0].Time
	offsets := make([]int, len(series))
	for i, ts := range series {
		offsets[i] = int(ts.Time.Sub(start).Minutes())
	}
	intervals := weather.InferMinuteIntervals(offsets, 5)

	out := make([]weather.Minutely, 0, len(series))
	for i, ts := range series {
		out = append(out, weather.Minutely{
			Date:                   ts.Time.UTC(),
			MinuteInterval:         intervals[i],
			PrecipitationIntensity: ts.Data.Instant.Details.PrecipitationRate,
		})
	}
	return out
}

func convertAlerts(resp *AlertsResponse) []weather.Alert {
	alerts := make([]weather.Alert, 0, len(resp.Features))
	for _, f := range resp.Features {
		p := f.Properties
		a := weather.Alert{
			AlertID:     p.ID,
			Headline:    p.Title,
			Description: p.Description,
			Instruction: p.Instruction,
			Source:      "MET Norway",
			Severity:    severity(p.Severity),
		}
		if a.Headline == "" {
			a.Headline = p.Event
		}
		if len(f.When.Interval) == 2 {
			start, end := f.When.Interval[0].UTC(), f.When.Interval[1].UTC()
			a.StartDate, a.EndDate = &start, &end
		}
		alerts = append(alerts, a)
	}
	return alerts
}

func severity(s string) weather.AlertSeverity {
	switch sev := weather.AlertSeverity(strings.ToLower(s)); sev {
	case weather.SeverityExtreme, weather.SeveritySevere, weather.SeverityModerate, weather.SeverityMinor:
		return sev
	default:
		return weather.SeverityUnknown
	}
}

func airQualityOf(vars map[string]Value) *airquality.AirQuality {
	aq := &airquality.AirQuality{
		PM25: vars["pm25_concentration"].Value,
		PM10: vars["pm10_concentration"].Value,
		NO2:  vars["no2_concentration"].Value,
		O3:   vars["o3_concentration"].Value,
		SO2:  vars["so2_concentration"].Value,
	}
	if !aq.IsValid() {
		return nil
	}
	return aq
}

func airQualityByHour(resp *AirQualityResponse) map[time.Time]*airquality.AirQuality {
	out := make(map[time.Time]*airquality.AirQuality)
	if resp == nil {
		return out
	}
	for _, entry := range resp.Data.Time {
		if aq := airQualityOf(entry.Variables); aq != nil {
			out[entry.From.UTC().Truncate(time.Hour)] = aq
		}
	}
	return out
}

// currentAirQuality returns the entry covering now, or the first entry.
func currentAirQuality(resp *AirQualityResponse, now time.Time) *airquality.AirQuality {
	if resp == nil || len(resp.Data.Time) == 0 {
		return nil
	}
	for _, entry := range resp.Data.Time {
		if !now.Before(entry.From) && now.Before(entry.To) {
			return airQualityOf(entry.Variables)
		}
	}
	return airQualityOf(resp.Data.Time[0].Variables)
}

var symbols = map[string]weather.Code{
	"clearsky":     weather.CodeClear,
	"fair":         weather.CodePartlyCloudy,
	"partlycloudy": weather.CodePartlyCloudy,
	"cloudy":       weather.CodeCloudy,
	"fog":          weather.CodeFog,
	"rain":         weather.CodeRain,
	"sleet":        weather.CodeSleet,
	"snow":         weather.CodeSnow,
}

// symbol maps a symbol code such as "lightrainshowers_day". Intensity
// prefixes, the showers suffix and the day/night variant are ignored.
func symbol(p *Period) (string, *weather.Code) {
	if p == nil || p.Summary.SymbolCode == "" {
		return "", nil
	}
	raw := p.Summary.SymbolCode
	base, _, _ := strings.Cut(raw, "_")
	if strings.Contains(base, "thunder") {
		c := weather.CodeThunderstorm
		return raw, &c
	}
	base = strings.TrimPrefix(base, "light")
	base = strings.TrimPrefix(base, "heavy")
	base = strings.TrimSuffix(base, "showers")
	c, ok := symbols[base]
	if !ok {
		return raw, nil
	}
	return raw, &c
}
