package triage

import "time"

// DaysUntil returns the number of calendar days from today (now read in loc)
// to eventDate. eventDate is a calendar date: its own Y/M/D is used as-is.
// Today is 0, yesterday is -1. Clock time and DST shifts never change the result.
func DaysUntil(eventDate, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return int(civilDay(eventDate).Sub(civilDay(now.In(loc))) / (24 * time.Hour))
}

// civilDay drops the clock and zone so day differences are exact multiples of 24h.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
