package weather

import (
	"fmt"
	"strconv"
	"time"
)

const (
	utcLayout       = "2006-01-02T15:04:05Z07:00"
	utcMicrosLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// FormatResult renders a period start time in UTC followed by value with
// four decimals, e.g. "2024-01-15T23:00:00Z 61.0000".
func FormatResult(startTime string, value float64, percent bool) (string, error) {
	ts, err := FormatTimestamp(startTime)
	if err != nil {
		return "", err
	}

	line := ts + " " + strconv.FormatFloat(value, 'f', 4, 64)
	if percent {
		line += "%"
	}
	return line, nil
}

// FormatTimestamp converts an offset-aware ISO-8601 time to UTC with a Z
// suffix. Sub-second precision is kept to the microsecond when present.
func FormatTimestamp(startTime string) (string, error) {
	t, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return "", fmt.Errorf("startTime %q: %w", startTime, err)
	}

	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format(utcMicrosLayout), nil
	}
	return t.Format(utcLayout), nil
}
