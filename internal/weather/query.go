package weather

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/swelljoe/wthrq/internal/failure"
)

type Metric string

const (
	Temperature   Metric = "TEMPERATURE"
	Humidity      Metric = "HUMIDITY"
	Wind          Metric = "WIND"
	Precipitation Metric = "PRECIPITATION"
)

// IsPercent reports whether values of m are rendered with a trailing %.
func (m Metric) IsPercent() bool {
	return m == Humidity || m == Precipitation
}

// Kind selects air or apparent temperature.
type Kind string

const (
	Air   Kind = "AIR"
	Feels Kind = "FEELS"
)

type Scale string

const (
	ScaleFahrenheit Scale = "F"
	ScaleCelsius    Scale = "C"
)

type Extremum string

const (
	Max Extremum = "MAX"
	Min Extremum = "MIN"
)

// Query asks for the period with the highest or lowest value of a metric
// among the first Window forecast periods. Kind and Scale are only set for
// temperature queries.
type Query struct {
	Metric   Metric
	Kind     Kind
	Scale    Scale
	Window   int
	Extremum Extremum
}

// QueryError reports a query line that could not be parsed.
type QueryError struct {
	Line   string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query %q: %s", e.Line, e.Reason)
}

// ParseQuery parses one query line, for example "TEMPERATURE FEELS C 36 MIN"
// or "HUMIDITY 5 MAX".
func ParseQuery(line string) (Query, error) {
	fields := strings.Fields(line)
	fail := func(format string, args ...any) (Query, error) {
		return Query{}, &QueryError{Line: line, Reason: fmt.Sprintf(format, args...)}
	}
	if len(fields) == 0 {
		return fail("empty line")
	}

	var q Query
	q.Metric = Metric(fields[0])
	switch q.Metric {
	case Temperature:
		if len(fields) != 5 {
			return fail("expected TEMPERATURE <AIR|FEELS> <C|F> <periods> <MAX|MIN>")
		}
		q.Kind = Kind(fields[1])
		if q.Kind != Air && q.Kind != Feels {
			return fail("unknown temperature kind %q", fields[1])
		}
		q.Scale = Scale(fields[2])
		if q.Scale != ScaleCelsius && q.Scale != ScaleFahrenheit {
			return fail("unknown temperature scale %q", fields[2])
		}
	case Humidity, Wind, Precipitation:
		if len(fields) != 3 {
			return fail("expected %s <periods> <MAX|MIN>", q.Metric)
		}
	default:
		return fail("unknown metric %q", fields[0])
	}

	window, err := strconv.Atoi(fields[len(fields)-2])
	if err != nil || window <= 0 {
		return fail("period count %q is not a positive integer", fields[len(fields)-2])
	}
	q.Window = window

	q.Extremum = Extremum(fields[len(fields)-1])
	if q.Extremum != Max && q.Extremum != Min {
		return fail("expected MAX or MIN, got %q", fields[len(fields)-1])
	}

	return q, nil
}

// RecordSource supplies forecast records for a query.
type RecordSource interface {
	Records(window int) ([]Record, error)
	Origin() failure.Provenance
}

type sample struct {
	timestamp string
	value     float64
}

// Answer evaluates q against src and returns the formatted result line.
// Apparent temperature is derived before any Celsius conversion.
func Answer(q Query, src RecordSource) (string, error) {
	records, err := src.Records(q.Window)
	if err != nil {
		return "", err
	}

	series := make([]sample, 0, len(records))
	for _, r := range records {
		var (
			v  float64
			ok bool
		)
		if q.Metric == Temperature && q.Kind == Feels {
			v, ok = r.FeelsLike()
		} else {
			v, ok = r.Value(q.Metric).Get()
		}
		if ok {
			series = append(series, sample{timestamp: r.Timestamp, value: v})
		}
	}

	if q.Metric == Temperature && q.Scale == ScaleCelsius {
		for i := range series {
			series[i].value = Celsius(series[i].value)
		}
	}

	if len(series) == 0 {
		return "", failure.DataFormat(src.Origin(),
			fmt.Sprintf("no %s values in the first %d periods", strings.ToLower(string(q.Metric)), q.Window))
	}

	best := extremum(series, q.Extremum)

	line, err := FormatResult(best.timestamp, best.value, q.Metric.IsPercent())
	if err != nil {
		return "", failure.DataFormat(src.Origin(), err.Error())
	}
	return line, nil
}

// extremum returns the first sample holding the largest (Max) or smallest
// (Min) value.
func extremum(series []sample, e Extremum) sample {
	best := series[0]
	for _, s := range series[1:] {
		if (e == Max && s.value > best.value) || (e == Min && s.value < best.value) {
			best = s
		}
	}
	return best
}
