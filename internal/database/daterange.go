package database

import "time"

// DayRange returns the first and last instants of the calendar day of day,
// evaluated in loc. The calendar date is read from day's own location.
func DayRange(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Microsecond)
	return start, end
}
