package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used in paths and query strings
const DateLayout = "2006-01-02"

// timestampLayouts are tried in order. Only the first carries an offset, the
// rest are read in the location passed to ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseTimestamp parses an ISO 8601 date or date-time
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	t, _, err := parseTimestamp(value, loc)
	return t, err
}

// parseTimestamp also reports whether value had no offset of its own
func parseTimestamp(value string, loc *time.Location) (time.Time, bool, error) {
	if loc == nil {
		loc = time.Local
	}
	for i, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, i > 0, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid timestamp %q: expected ISO 8601 date or date-time", value)
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight in loc
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// Timestamp is a time.Time that accepts any of the supported ISO 8601 layouts
// when decoded from JSON. A value without an offset is decoded in UTC and
// keeps its wall clock until At places it in a location.
type Timestamp struct {
	time.Time
	floating bool
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, floating, err := parseTimestamp(raw, time.UTC)
	if err != nil {
		return err
	}
	t.Time = parsed
	t.floating = floating
	return nil
}

// At returns the instant t denotes. A value sent without an offset is read
// as wall-clock time in loc; one with an offset is returned unchanged.
func (t Timestamp) At(loc *time.Location) time.Time {
	if !t.floating {
		return t.Time
	}
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// Optional distinguishes an omitted JSON field from an explicit null.
// Set is true whenever the field was present in the document.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
