package weather

import "time"

// Merge copies the given features from a secondary wrapper into dst.
// Per-day and per-hour values are matched by date; entries dst does not
// have are ignored.
func Merge(dst, src *Wrapper, features Features, tz *time.Location) {
	if dst == nil || src == nil {
		return
	}

	if features.Has(FeatureCurrent) && src.Current != nil {
		aq := src.Current.AirQuality
		if dst.Current != nil && aq == nil {
			aq = dst.Current.AirQuality
		}
		current := *src.Current
		current.AirQuality = aq
		dst.Current = &current
	}

	if features.Has(FeatureAirQuality) {
		if src.Current != nil && src.Current.AirQuality != nil {
			if dst.Current == nil {
				dst.Current = &Current{}
			}
			dst.Current.AirQuality = src.Current.AirQuality
		}

		hourly := make(map[int64]*Hourly, len(src.Hourly))
		for i := range src.Hourly {
			hourly[src.Hourly[i].Date.Unix()] = &src.Hourly[i]
		}
		for i := range dst.Hourly {
			if h, ok := hourly[dst.Hourly[i].Date.Unix()]; ok && h.AirQuality != nil {
				dst.Hourly[i].AirQuality = h.AirQuality
			}
		}

		forEachMatchingDay(dst.Daily, src.Daily, tz, func(d, s *Daily) {
			if s.AirQuality != nil {
				d.AirQuality = s.AirQuality
			}
		})
	}

	if features.Has(FeaturePollen) {
		forEachMatchingDay(dst.Daily, src.Daily, tz, func(d, s *Daily) {
			if s.Pollen != nil {
				d.Pollen = s.Pollen
			}
		})
	}

	if features.Has(FeatureMinutely) && src.Minutely != nil {
		dst.Minutely = src.Minutely
	}
	if features.Has(FeatureAlert) && src.Alerts != nil {
		dst.Alerts = src.Alerts
	}
	if features.Has(FeatureNormals) && src.Normals != nil {
		dst.Normals = src.Normals
	}
}

func forEachMatchingDay(dst, src []Daily, tz *time.Location, fn func(d, s *Daily)) {
	days := make(map[time.Time]*Daily, len(src))
	for i := range src {
		days[calendarDay(src[i].Date, tz)] = &src[i]
	}
	for i := range dst {
		if s, ok := days[calendarDay(dst[i].Date, tz)]; ok {
			fn(&dst[i], s)
		}
	}
}
