package timeutil

import "time"

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

// IsMidnight reports whether value carries no time-of-day component.
func IsMidnight(value time.Time) bool {
	return value.Hour() == 0 && value.Minute() == 0 && value.Second() == 0 && value.Nanosecond() == 0
}

// SinceMidnight returns the time-of-day part of value as a duration.
func SinceMidnight(value time.Time) time.Duration {
	return value.Sub(StartOfDay(value))
}
