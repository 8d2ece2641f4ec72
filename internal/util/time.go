package util

import (
	"fmt"
	"math"
	"time"
)

// The event store reports instants as ISO-8601 strings with millisecond
// precision; the engine works in Unix milliseconds, always UTC.

// ParseTimestampMs parses an ISO-8601 timestamp into Unix milliseconds.
func ParseTimestampMs(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// Some watchers emit a space instead of 'T'.
		t, err = time.Parse("2006-01-02 15:04:05.999999999Z07:00", s)
		if err != nil {
			return 0, fmt.Errorf("parse timestamp %q: %w", s, err)
		}
	}
	return t.UnixMilli(), nil
}

// FormatMs renders Unix milliseconds as an RFC3339 UTC timestamp with
// millisecond precision.
func FormatMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// SecondsToMs converts the wire's float seconds duration to integer
// milliseconds. Rounded, not truncated: float64 cannot represent every
// exact-millisecond value (1.001 * 1000 is 1000.9999...), and losing that
// millisecond would move interval boundaries.
func SecondsToMs(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}

// DayWindowMs returns the UTC [start, end) bounds of a calendar date given
// as "2006-01-02".
func DayWindowMs(date string) (int64, int64, error) {
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, 0, fmt.Errorf("parse date %q: %w", date, err)
	}
	start := t.UnixMilli()
	end := t.AddDate(0, 0, 1).UnixMilli()
	return start, end, nil
}

// FormatDurationMs renders a millisecond duration compactly (e.g. "1h3m",
// "42s", "750ms") for table output.
func FormatDurationMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
