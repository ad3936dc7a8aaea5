package emaillog

import (
	"fmt"
	"time"
)

// LogTime values are ISO-8601 with millisecond precision, always UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// localTimeLayout renders a LogTime for display in the configured offset.
const localTimeLayout = "02 Jan 2006, 15:04:05.000 -07:00"

// FormatTime renders t as a LogTime value.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// NormalizeTimestamp re-renders a provider-supplied timestamp as a LogTime
// value. An empty or unparseable input falls back to now, so a record is
// always written with a derivable LogTime.
func NormalizeTimestamp(supplied string, now time.Time) string {
	if supplied == "" {
		return FormatTime(now)
	}
	t, err := time.Parse(time.RFC3339, supplied)
	if err != nil {
		return FormatTime(now)
	}
	return FormatTime(t)
}

// ParseOffset converts a fixed UTC offset such as "+07:00" into a Location
// for local-time display.
func ParseOffset(offset string) (*time.Location, error) {
	if offset == "" || offset == "Z" {
		return time.UTC, nil
	}
	t, err := time.Parse("-07:00", offset)
	if err != nil {
		return nil, fmt.Errorf("invalid UTC offset %q", offset)
	}
	_, secs := t.Zone()
	if secs == 0 {
		return time.UTC, nil
	}
	return time.FixedZone(offset, secs), nil
}

// localTime renders a stored LogTime in loc. Unparseable values render
// empty rather than failing the query.
func localTime(logTime string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, logTime)
	if err != nil {
		return ""
	}
	return t.In(loc).Format(localTimeLayout)
}
