package weather

import (
	"slices"
	"time"
)

// Normalize orders Daily, Hourly and Minutely by ascending date and drops
// entries repeating an earlier timestamp, keeping the first.
func (w *Wrapper) Normalize() {
	if w == nil {
		return
	}
	w.Daily = sortUnique(w.Daily, func(d Daily) time.Time { return d.Date })
	w.Hourly = sortUnique(w.Hourly, func(h Hourly) time.Time { return h.Date })
	w.Minutely = sortUnique(w.Minutely, func(m Minutely) time.Time { return m.Date })
}

func sortUnique[T any](items []T, date func(T) time.Time) []T {
	if items == nil {
		return nil
	}
	slices.SortStableFunc(items, func(a, b T) int {
		return date(a).Compare(date(b))
	})
	out := items[:0]
	for i, item := range items {
		if i > 0 && date(item).Equal(date(out[len(out)-1])) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// halfDayShift moves the day boundary to 06:00 local time. After shifting,
// hours 0-11 are the day half (06:00-17:59) and hours 12-23 the night half
// (18:00-05:59 of the next calendar day).
const halfDayShift = 6 * time.Hour

// HalfDayOf returns the local date an hourly timestamp belongs to and
// whether it falls in the day half.
func HalfDayOf(t time.Time, tz *time.Location) (date time.Time, isDay bool) {
	shifted := t.In(tz).Add(-halfDayShift)
	y, m, d := shifted.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, tz), shifted.Hour() < 12
}

// BucketHalfDays builds daily entries for sources that only publish an
// hourly stream. Each day half aggregates its hours: the highest
// temperature by day, the lowest by night, summed precipitation, the highest
// probability, the strongest wind, mean cloud cover and the most severe
// weather code.
func BucketHalfDays(hourly []Hourly, tz *time.Location) []Daily {
	type bucket struct {
		day, night []Hourly
	}
	buckets := make(map[time.Time]*bucket)
	var dates []time.Time

	for _, h := range hourly {
		date, isDay := HalfDayOf(h.Date, tz)
		b, ok := buckets[date]
		if !ok {
			b = &bucket{}
			buckets[date] = b
			dates = append(dates, date)
		}
		if isDay {
			b.day = append(b.day, h)
		} else {
			b.night = append(b.night, h)
		}
	}

	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	daily := make([]Daily, 0, len(dates))
	for _, date := range dates {
		b := buckets[date]
		daily = append(daily, Daily{
			Date:  date,
			Day:   aggregateHalfDay(b.day, true),
			Night: aggregateHalfDay(b.night, false),
		})
	}
	return daily
}

func aggregateHalfDay(hours []Hourly, isDay bool) *HalfDay {
	if len(hours) == 0 {
		return nil
	}

	extreme := maxOf
	if !isDay {
		extreme = minOf
	}

	half := &HalfDay{}
	var (
		temps, apparent, clouds []*float64
		precip, prob            []*Precipitation
		strongest               *Wind
	)
	for _, h := range hours {
		if h.Temperature != nil {
			temps = append(temps, h.Temperature.Temperature)
			apparent = append(apparent, h.Temperature.ApparentTemperature)
		}
		clouds = append(clouds, h.CloudCover)
		precip = append(precip, h.Precipitation)
		prob = append(prob, h.PrecipitationProbability)

		if h.Wind != nil && h.Wind.Speed != nil &&
			(strongest == nil || *h.Wind.Speed > *strongest.Speed) {
			strongest = h.Wind
		}
		if h.WeatherCode != nil &&
			(half.WeatherCode == nil || h.WeatherCode.Severity() > half.WeatherCode.Severity()) {
			half.WeatherCode = h.WeatherCode
			half.WeatherText = h.WeatherText
		}
	}

	if t, a := extreme(temps), extreme(apparent); t != nil || a != nil {
		half.Temperature = &Temperature{Temperature: t, ApparentTemperature: a}
	}
	half.Precipitation = combinePrecipitation(precip, sumOf)
	half.PrecipitationProbability = combinePrecipitation(prob, maxOf)
	half.CloudCover = meanOf(clouds)
	if strongest != nil {
		w := *strongest
		half.Wind = &w
	}
	return half
}

func combinePrecipitation(items []*Precipitation, agg func([]*float64) *float64) *Precipitation {
	var total, thunder, rain, snow, ice []*float64
	for _, p := range items {
		if p == nil {
			continue
		}
		total = append(total, p.Total)
		thunder = append(thunder, p.Thunderstorm)
		rain = append(rain, p.Rain)
		snow = append(snow, p.Snow)
		ice = append(ice, p.Ice)
	}
	out := &Precipitation{
		Total:        agg(total),
		Thunderstorm: agg(thunder),
		Rain:         agg(rain),
		Snow:         agg(snow),
		Ice:          agg(ice),
	}
	if out.Total == nil && out.Thunderstorm == nil && out.Rain == nil && out.Snow == nil && out.Ice == nil {
		return nil
	}
	return out
}

// The aggregate helpers ignore nil values and return nil when every value
// is nil.

func sumOf(values []*float64) *float64 {
	var sum float64
	found := false
	for _, v := range values {
		if v != nil {
			sum += *v
			found = true
		}
	}
	if !found {
		return nil
	}
	return &sum
}

func meanOf(values []*float64) *float64 {
	var sum float64
	n := 0
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

func maxOf(values []*float64) *float64 {
	var out *float64
	for _, v := range values {
		if v != nil && (out == nil || *v > *out) {
			x := *v
			out = &x
		}
	}
	return out
}

func minOf(values []*float64) *float64 {
	var out *float64
	for _, v := range values {
		if v != nil && (out == nil || *v < *out) {
			x := *v
			out = &x
		}
	}
	return out
}

// InferMinuteIntervals derives nowcast intervals from minute offsets. Each
// interval is the gap to the next offset; the last entry reuses the gap
// from its predecessor. A single offset gets def.
func InferMinuteIntervals(offsets []int, def int) []int {
	if len(offsets) == 0 {
		return nil
	}
	intervals := make([]int, len(offsets))
	if len(offsets) == 1 {
		intervals[0] = def
		return intervals
	}
	for i := 0; i < len(offsets)-1; i++ {
		intervals[i] = offsets[i+1] - offsets[i]
	}
	last := len(offsets) - 1
	intervals[last] = offsets[last] - offsets[last-1]
	return intervals
}

// ProbabilityEntry is one entry of a vendor schedule publishing rain
// probabilities over the 3 and 6 hours following Start.
type ProbabilityEntry struct {
	Start     time.Time
	ThreeHour *float64
	SixHour   *float64
}

// ProbabilitySchedule reconciles overlapping 3-hour and 6-hour probability
// windows.
type ProbabilitySchedule []ProbabilityEntry

// At returns the probability for the hour starting at t. A 3-hour window
// covering t takes precedence over any 6-hour window covering it.
func (s ProbabilitySchedule) At(t time.Time) *float64 {
	if v := s.covering(t, 3*time.Hour, func(e ProbabilityEntry) *float64 { return e.ThreeHour }); v != nil {
		return v
	}
	return s.covering(t, 6*time.Hour, func(e ProbabilityEntry) *float64 { return e.SixHour })
}

func (s ProbabilitySchedule) covering(t time.Time, span time.Duration, value func(ProbabilityEntry) *float64) *float64 {
	for _, e := range s {
		v := value(e)
		if v == nil {
			continue
		}
		if !t.Before(e.Start) && t.Before(e.Start.Add(span)) {
			return v
		}
	}
	return nil
}
