package domain

import "time"

// NormalizeDate truncates a timestamp to a calendar date at UTC midnight.
// All period boundaries and as-of comparisons go through this so that
// time-of-day and zone offsets never influence "is in the past" checks.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeDateIn converts a timestamp to a calendar date in the given
// reference zone, then anchors it at UTC midnight.
func NormalizeDateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func addMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
