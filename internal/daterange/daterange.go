// Package daterange resolves the reporting window for an activity query.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const day = 24 * time.Hour

// MaxSpan is the longest window GitHub accepts for a contributions query.
const MaxSpan = 365 * day

var errExceedsYear = errors.New("date range exceeds one year; GitHub limits contribution queries to one year")

// ParsePeriod parses "day", "week", "month" (30 days) or a count with a
// unit like "1w", "30d", "6mo".
func ParsePeriod(s string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day":
		return day, nil
	case "week":
		return 7 * day, nil
	case "month":
		return 30 * day, nil
	}

	var n int
	var unit string
	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid period: %s (use day, week, month or e.g. 1w, 30d)", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid period: %s (must be positive)", s)
	}

	var per time.Duration
	switch unit {
	case "h", "hr", "hrs", "hour", "hours":
		per = time.Hour
	case "d", "day", "days":
		per = day
	case "w", "wk", "wks", "week", "weeks":
		per = 7 * day
	case "mo", "month", "months":
		per = 30 * day
	case "y", "yr", "yrs", "year", "years":
		per = 365 * day
	default:
		return 0, fmt.Errorf("unknown period unit: %s", unit)
	}
	// Checked before multiplying so huge counts cannot wrap around.
	if n > int(MaxSpan/per) {
		return 0, errExceedsYear
	}
	return time.Duration(n) * per, nil
}

// ParseDate accepts RFC3339 or a bare YYYY-MM-DD date, which is taken as
// midnight UTC. The bool reports whether the date-only form matched.
func ParseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q (use YYYY-MM-DD or RFC3339)", s)
}

// Resolve computes [from, to) for the report. An explicit from wins over
// period; to defaults to now. A bare date for to includes that whole day.
func Resolve(period, from, to string, now time.Time) (time.Time, time.Time, error) {
	end := now.UTC()
	if to != "" {
		t, dateOnly, err := ParseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
		}
		if dateOnly {
			t = t.Add(day)
		}
		end = t
	}

	var start time.Time
	if from != "" {
		t, _, err := ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
		}
		start = t
	} else {
		d, err := ParsePeriod(period)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = end.Add(-d)
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s is not before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if end.Sub(start) > MaxSpan {
		return time.Time{}, time.Time{}, errExceedsYear
	}
	return start, end, nil
}
