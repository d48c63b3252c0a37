// Package tracker implements the calendar-day scoped operations on habits and
// daily logs. Each calendar day is evaluated in a single server location.
//
// Lookups and writes are check-then-act without row locks, so two concurrent
// requests for the same day may both insert. Nothing in the schema rejects the
// duplicate and later reads return the earliest row of the day.
package tracker

import (
	"time"

	"github.com/benvon/ordia/internal/database"
)

// Option configures a service
type Option func(*clock)

type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *clock) {
		c.now = now
	}
}

// WithLocation sets the location calendar days are evaluated in
func WithLocation(loc *time.Location) Option {
	return func(c *clock) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func (c clock) dayRange(day time.Time) (time.Time, time.Time) {
	return database.DayRange(day, c.loc)
}

// onDay keeps the calendar date of day and the time of day of at, in the
// server location.
func (c clock) onDay(day, at time.Time) time.Time {
	at = at.In(c.loc)
	y, m, d := day.Date()
	return c.wallClock(time.Date(y, m, d, at.Hour(), at.Minute(), at.Second(), at.Nanosecond(), time.UTC))
}

// wallClock keeps the date and clock reading of t as written and places them
// in the server location. Precision is cut to what PostgreSQL stores so the
// result always falls inside the day's range.
func (c clock) wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	stamped := time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), c.loc)
	return stamped.Truncate(time.Microsecond)
}
