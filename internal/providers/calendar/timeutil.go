package calendar

import (
	"fmt"
	"strings"
	"time"
)

const defaultDuration = time.Hour

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 timestamps with Z or an offset, and zone-less
// timestamps which are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// dayBounds returns the start of the day named by the first ten characters
// of date and the start of the following day.
func dayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	if len(date) < 10 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	day, err := time.ParseInLocation(time.DateOnly, date[:10], loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day, day.AddDate(0, 0, 1), nil
}
