package weather

import "time"

// Sum adds the reported values. It returns nil when none is reported.
func Sum(values ...*float64) *float64 {
	return sumOf(values)
}

// Max returns the largest reported value, or nil.
func Max(values ...*float64) *float64 {
	return maxOf(values)
}

// Scale multiplies a reported value by factor.
func Scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v * factor
	return &out
}

// Float converts a reported integer value.
func Float(v *int) *float64 {
	if v == nil {
		return nil
	}
	out := float64(*v)
	return &out
}

// LocalMidnight returns midnight of the calendar day t falls on in tz.
func LocalMidnight(t time.Time, tz *time.Location) time.Time {
	return calendarDay(t, tz)
}

// UnixTime converts epoch seconds to a time. Zero stays unreported.
func UnixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
