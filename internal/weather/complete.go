package weather

import (
	"time"

	"github.com/nimbusweather/nimbus/internal/airquality"
	"github.com/nimbusweather/nimbus/internal/units"
)

// Complete fills values derivable from what the vendors reported. It never
// invents data: a value is only derived when all of its inputs exist.
func Complete(w *Wrapper, tz *time.Location) {
	if w == nil {
		return
	}

	if w.Current != nil {
		c := w.Current
		c.DewPoint, c.RelativeHumidity = completeMoisture(c.Temperature, c.DewPoint, c.RelativeHumidity)
		c.Temperature = completeTemperature(c.Temperature, c.RelativeHumidity, c.Wind)
	}

	for i := range w.Hourly {
		h := &w.Hourly[i]
		h.DewPoint, h.RelativeHumidity = completeMoisture(h.Temperature, h.DewPoint, h.RelativeHumidity)
		h.Temperature = completeTemperature(h.Temperature, h.RelativeHumidity, h.Wind)
	}

	completeDaylight(w.Hourly, w.Daily, tz)
	completeDailyAggregates(w.Daily, w.Hourly, tz)

	for i := range w.Alerts {
		a := &w.Alerts[i]
		if a.Severity == "" {
			a.Severity = SeverityUnknown
		}
		if a.Color == "" {
			a.Color = a.Severity.Color()
		}
	}
}

func completeMoisture(t *Temperature, dewPoint, humidity *float64) (*float64, *float64) {
	if t == nil || t.Temperature == nil {
		return dewPoint, humidity
	}
	if dewPoint == nil {
		dewPoint = units.DewPoint(t.Temperature, humidity)
	}
	if humidity == nil {
		humidity = units.RelativeHumidity(t.Temperature, dewPoint)
	}
	return dewPoint, humidity
}

func completeTemperature(t *Temperature, humidity *float64, wind *Wind) *Temperature {
	if t == nil || t.Temperature == nil {
		return t
	}
	var speed *float64
	if wind != nil {
		speed = wind.Speed
	}
	if t.ApparentTemperature == nil {
		t.ApparentTemperature = units.ApparentTemperature(t.Temperature, humidity, speed)
	}
	if t.WindChill == nil {
		t.WindChill = units.WindChill(t.Temperature, speed)
	}
	if t.WetBulbTemperature == nil {
		t.WetBulbTemperature = units.WetBulb(t.Temperature, humidity)
	}
	return t
}

func calendarDay(t time.Time, tz *time.Location) time.Time {
	y, m, d := t.In(tz).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, tz)
}

func completeDaylight(hourly []Hourly, daily []Daily, tz *time.Location) {
	sun := make(map[time.Time]*Daily, len(daily))
	for i := range daily {
		sun[calendarDay(daily[i].Date, tz)] = &daily[i]
	}
	for i := range hourly {
		h := &hourly[i]
		if h.IsDaylight != nil {
			continue
		}
		d, ok := sun[calendarDay(h.Date, tz)]
		if !ok || d.Sunrise == nil || d.Sunset == nil {
			continue
		}
		daylight := !h.Date.Before(*d.Sunrise) && h.Date.Before(*d.Sunset)
		h.IsDaylight = &daylight
	}
}

func completeDailyAggregates(daily []Daily, hourly []Hourly, tz *time.Location) {
	if len(hourly) == 0 {
		return
	}
	byDay := make(map[time.Time][]Hourly)
	for _, h := range hourly {
		day := calendarDay(h.Date, tz)
		byDay[day] = append(byDay[day], h)
	}

	for i := range daily {
		d := &daily[i]
		hours := byDay[calendarDay(d.Date, tz)]
		if len(hours) == 0 {
			continue
		}

		pick := func(get func(Hourly) *float64) []*float64 {
			values := make([]*float64, len(hours))
			for j, h := range hours {
				values[j] = get(h)
			}
			return values
		}

		if d.RelativeHumidity == nil {
			d.RelativeHumidity = dailyRange(pick(func(h Hourly) *float64 { return h.RelativeHumidity }))
		}
		if d.DewPoint == nil {
			d.DewPoint = dailyRange(pick(func(h Hourly) *float64 { return h.DewPoint }))
		}
		if d.Pressure == nil {
			d.Pressure = dailyRange(pick(func(h Hourly) *float64 { return h.Pressure }))
		}
		if d.CloudCover == nil {
			d.CloudCover = dailyRange(pick(func(h Hourly) *float64 { return h.CloudCover }))
		}
		if d.Visibility == nil {
			d.Visibility = dailyRange(pick(func(h Hourly) *float64 { return h.Visibility }))
		}
		if d.UV == nil {
			if uv := maxOf(pick(func(h Hourly) *float64 { return h.UVIndex })); uv != nil {
				d.UV = &UV{Index: uv}
			}
		}
		if d.AirQuality == nil {
			d.AirQuality = dailyAirQuality(hours)
		}
	}
}

func dailyRange(values []*float64) *DailyRange {
	avg := meanOf(values)
	if avg == nil {
		return nil
	}
	return &DailyRange{Average: avg, Max: maxOf(values), Min: minOf(values)}
}

// dailyAirQuality averages each pollutant over the hours reporting it.
func dailyAirQuality(hours []Hourly) *airquality.AirQuality {
	avg := func(get func(*airquality.AirQuality) *float64) *float64 {
		values := make([]*float64, 0, len(hours))
		for _, h := range hours {
			if h.AirQuality != nil {
				values = append(values, get(h.AirQuality))
			}
		}
		return meanOf(values)
	}

	aq := &airquality.AirQuality{
		PM25: avg(func(a *airquality.AirQuality) *float64 { return a.PM25 }),
		PM10: avg(func(a *airquality.AirQuality) *float64 { return a.PM10 }),
		SO2:  avg(func(a *airquality.AirQuality) *float64 { return a.SO2 }),
		NO2:  avg(func(a *airquality.AirQuality) *float64 { return a.NO2 }),
		O3:   avg(func(a *airquality.AirQuality) *float64 { return a.O3 }),
		CO:   avg(func(a *airquality.AirQuality) *float64 { return a.CO }),
	}
	if !aq.IsValid() {
		return nil
	}
	return aq
}
