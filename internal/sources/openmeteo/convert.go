package openmeteo

import (
	"fmt"
	"time"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/pollen"
	"github.com/nimbusweather/nimbus/internal/weather"
)

func at[T any](values []*T, i int) *T {
	if i < len(values) {
		return values[i]
	}
	return nil
}

// convert maps the forecast and the optional air quality response. The
// daily and hourly columns are mandatory. Day and night halves come from
// the hourly forecast; the daily columns only add sun and UV data.
func convert(fc *ForecastResponse, aqr *AirQualityResponse, features weather.Features, tz *time.Location) (*weather.Wrapper, error) {
	if fc == nil || fc.Daily == nil || len(fc.Daily.Time) == 0 || fc.Hourly == nil || len(fc.Hourly.Time) == 0 {
		return nil, fmt.Errorf("%w: openmeteo: empty daily or hourly forecast", weather.ErrInvalidData)
	}

	w := &weather.Wrapper{Hourly: convertHourly(fc.Hourly)}

	aq := convertAirQuality(aqr, features, tz)
	for i := range w.Hourly {
		if a, ok := aq.hourly[w.Hourly[i].Date.Unix()]; ok {
			w.Hourly[i].AirQuality = a
		}
	}

	w.Daily = weather.BucketHalfDays(w.Hourly, tz)
	days := make(map[time.Time]int, len(fc.Daily.Time))
	for i, t := range fc.Daily.Time {
		days[weather.LocalMidnight(time.Unix(t, 0), tz)] = i
	}
	for i := range w.Daily {
		d := &w.Daily[i]
		if pl, ok := aq.pollen[d.Date]; ok {
			d.Pollen = pl
		}
		j, ok := days[d.Date]
		if !ok {
			continue
		}
		if t := at(fc.Daily.Sunrise, j); t != nil {
			d.Sunrise = weather.UnixTime(*t)
		}
		if t := at(fc.Daily.Sunset, j); t != nil {
			d.Sunset = weather.UnixTime(*t)
		}
		if uv := at(fc.Daily.UVMax, j); uv != nil {
			d.UV = &weather.UV{Index: uv}
		}
		d.SunshineDuration = weather.Scale(at(fc.Daily.SunshineDuration, j), 1.0/3600)
		if hours := at(fc.Daily.PrecipitationHours, j); hours != nil && d.Day != nil {
			d.Day.PrecipitationDuration = &weather.Precipitation{Total: hours}
		}
	}

	if features.Has(weather.FeatureCurrent) && fc.Current != nil {
		w.Current = convertCurrent(fc.Current)
	}
	if aq.current != nil {
		if w.Current == nil {
			w.Current = &weather.Current{}
		}
		w.Current.AirQuality = aq.current
	}
	if features.Has(weather.FeatureMinutely) {
		w.Minutely = convertMinutely(fc.Minutely15)
	}
	return w, nil
}

// convertSecondary maps the air quality response alone.
func convertSecondary(aqr *AirQualityResponse, features weather.Features, tz *time.Location) *weather.Wrapper {
	aq := convertAirQuality(aqr, features, tz)
	w := &weather.Wrapper{}
	if aq.current != nil {
		w.Current = &weather.Current{AirQuality: aq.current}
	}
	if aqr == nil || aqr.Hourly == nil {
		return w
	}

	for _, t := range aqr.Hourly.Time {
		if a, ok := aq.hourly[t]; ok {
			w.Hourly = append(w.Hourly, weather.Hourly{Date: time.Unix(t, 0).UTC(), AirQuality: a})
		}
	}
	for date, pl := range aq.pollen {
		w.Daily = append(w.Daily, weather.Daily{Date: date, Pollen: pl})
	}
	w.Normalize()
	return w
}

func convertCurrent(c *Current) *weather.Current {
	return &weather.Current{
		WeatherCode: weatherCode(c.WeatherCode),
		Temperature: &weather.Temperature{
			Temperature:         c.Temperature2m,
			ApparentTemperature: c.ApparentTemperature,
		},
		Wind: &weather.Wind{
			Degree: c.WindDirection10m,
			Speed:  c.WindSpeed10m,
			Gusts:  c.WindGusts10m,
		},
		UVIndex:          c.UVIndex,
		RelativeHumidity: c.RelativeHumidity2m,
		DewPoint:         c.DewPoint2m,
		Pressure:         c.PressureMSL,
		CloudCover:       c.CloudCover,
		Visibility:       c.Visibility,
	}
}

func convertHourly(h *Hourly) []weather.Hourly {
	out := make([]weather.Hourly, 0, len(h.Time))
	for i, t := range h.Time {
		snow := weather.Scale(at(h.Snowfall, i), 10)
		rain := weather.Sum(at(h.Rain, i), at(h.Showers, i))

		hourly := weather.Hourly{
			Date:        time.Unix(t, 0).UTC(),
			WeatherCode: weatherCode(at(h.WeatherCode, i)),
			Temperature: &weather.Temperature{
				Temperature:         at(h.Temperature2m, i),
				ApparentTemperature: at(h.ApparentTemperature, i),
			},
			Wind: &weather.Wind{
				Degree: at(h.WindDirection10m, i),
				Speed:  at(h.WindSpeed10m, i),
				Gusts:  at(h.WindGusts10m, i),
			},
			UVIndex:          at(h.UVIndex, i),
			RelativeHumidity: at(h.RelativeHumidity2m, i),
			DewPoint:         at(h.DewPoint2m, i),
			Pressure:         at(h.PressureMSL, i),
			CloudCover:       at(h.CloudCover, i),
			Visibility:       at(h.Visibility, i),
		}
		if total := at(h.Precipitation, i); total != nil || rain != nil || snow != nil {
			hourly.Precipitation = &weather.Precipitation{Total: total, Rain: rain, Snow: snow}
		}
		if p := at(h.PrecipitationProbability, i); p != nil {
			hourly.PrecipitationProbability = &weather.Precipitation{Total: p}
		}
		if d := at(h.IsDay, i); d != nil {
			daylight := *d == 1
			hourly.IsDaylight = &daylight
		}
		out = append(out, hourly)
	}
	return out
}

// convertMinutely maps the 15-minute precipitation sums to mm/h.
func convertMinutely(m *Minutely15) []weather.Minutely {
	if m == nil {
		return nil
	}
	out := make([]weather.Minutely, 0, len(m.Time))
	for i, t := range m.Time {
		out = append(out, weather.Minutely{
			Date:                   time.Unix(t, 0).UTC(),
			MinuteInterval:         15,
			PrecipitationIntensity: weather.Scale(at(m.Precipitation, i), 4),
		})
	}
	return out
}

type airQualityData struct {
	current *airquality.AirQuality
	hourly  map[int64]*airquality.AirQuality
	pollen  map[time.Time]*pollen.Pollen
}

// convertAirQuality indexes pollutants by hour and pollen by local day. The
// entry closest to now is the current air quality. Daily pollen is the
// highest hourly count of each allergen.
func convertAirQuality(resp *AirQualityResponse, features weather.Features, tz *time.Location) airQualityData {
	out := airQualityData{
		hourly: make(map[int64]*airquality.AirQuality),
		pollen: make(map[time.Time]*pollen.Pollen),
	}
	if resp == nil || resp.Hourly == nil {
		return out
	}
	h := resp.Hourly
	now := time.Now().Unix()

	for i, t := range h.Time {
		if features.Has(weather.FeatureAirQuality) {
			aq := &airquality.AirQuality{
				PM25: at(h.PM25, i),
				PM10: at(h.PM10, i),
				SO2:  at(h.SulphurDioxide, i),
				NO2:  at(h.NitrogenDioxide, i),
				O3:   at(h.Ozone, i),
				CO:   weather.Scale(at(h.CarbonMonoxide, i), 0.001),
			}
			if aq.IsValid() {
				out.hourly[t] = aq
				if out.current == nil || t <= now {
					out.current = aq
				}
			}
		}

		if features.Has(weather.FeaturePollen) {
			day := weather.LocalMidnight(time.Unix(t, 0), tz)
			pl, ok := out.pollen[day]
			if !ok {
				pl = &pollen.Pollen{}
			}
			for a, v := range map[pollen.Allergen]*float64{
				pollen.Alder:   at(h.AlderPollen, i),
				pollen.Birch:   at(h.BirchPollen, i),
				pollen.Grass:   at(h.GrassPollen, i),
				pollen.Mugwort: at(h.MugwortPollen, i),
				pollen.Olive:   at(h.OlivePollen, i),
				pollen.Ragweed: at(h.RagweedPollen, i),
			} {
				pl.Set(a, weather.Max(pl.Concentration(a), v))
			}
			if pl.IsValid() {
				out.pollen[day] = pl
			}
		}
	}
	return out
}

// weatherCode maps WMO weather interpretation codes.
func weatherCode(code *int) *weather.Code {
	if code == nil {
		return nil
	}
	var c weather.Code
	switch *code {
	case 0:
		c = weather.CodeClear
	case 1, 2:
		c = weather.CodePartlyCloudy
	case 3:
		c = weather.CodeCloudy
	case 45, 48:
		c = weather.CodeFog
	case 51, 53, 55, 61, 63, 65, 80, 81, 82:
		c = weather.CodeRain
	case 56, 57, 66, 67:
		c = weather.CodeSleet
	case 71, 73, 75, 77, 85, 86:
		c = weather.CodeSnow
	case 95:
		c = weather.CodeThunderstorm
	case 96, 99:
		c = weather.CodeHail
	default:
		return nil
	}
	return &c
}
