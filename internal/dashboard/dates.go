package dashboard

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used everywhere in the API.
const DateLayout = "2006-01-02"

// ParseDate validates a YYYY-MM-DD string and returns it as a date-only
// value pinned to UTC midnight.  Arithmetic on the returned value never
// crosses a DST boundary.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// AddDays moves a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, n).Format(DateLayout), nil
}

// Today returns the current calendar date in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(DateLayout)
}
