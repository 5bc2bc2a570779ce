package period

import "time"

// StartOfWeek returns Monday 00:00:00 UTC of the ISO week containing t.
func StartOfWeek(t time.Time) time.Time {
	t = t.UTC()
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(t.Weekday()) + 6) % 7
	t = t.AddDate(0, 0, -offset)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfWeek returns the last instant of the ISO week containing t
// (Sunday 23:59:59.999999999 UTC).
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7).Add(-time.Nanosecond)
}
