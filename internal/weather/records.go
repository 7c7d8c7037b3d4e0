package weather

import (
	"fmt"
	"strings"

	"github.com/swelljoe/wthrq/internal/payload"
)

// Reading is an optional forecast value. NWS leaves humidity and
// precipitation empty for some periods, and an empty value is not a zero
// reading.
type Reading struct {
	value   float64
	present bool
}

// Some returns a present reading.
func Some(v float64) Reading {
	return Reading{value: v, present: true}
}

// Absent is the reading of a period that has no value.
var Absent = Reading{}

// Get returns the value and whether it is present.
func (r Reading) Get() (float64, bool) {
	return r.value, r.present
}

// Record is one forecast period normalized to °F, percent and mph.
type Record struct {
	Timestamp     string
	Temperature   Reading
	Humidity      Reading
	Wind          Reading
	Precipitation Reading
}

// Value returns the reading for m.
func (r Record) Value(m Metric) Reading {
	switch m {
	case Temperature:
		return r.Temperature
	case Humidity:
		return r.Humidity
	case Wind:
		return r.Wind
	case Precipitation:
		return r.Precipitation
	}
	return Absent
}

// FeelsLike returns the apparent temperature of the period, or false when
// the inputs the formula needs are absent.
func (r Record) FeelsLike() (float64, bool) {
	t, ok := r.Temperature.Get()
	if !ok {
		return 0, false
	}
	h, hasHumidity := r.Humidity.Get()
	w, hasWind := r.Wind.Get()

	switch {
	case t >= heatIndexThreshold && !hasHumidity:
		return 0, false
	case t <= windChillThreshold && !hasWind:
		return 0, false
	}
	return FeelsLike(t, h, w), true
}

// Extract reads the first window periods of an hourly forecast payload. The
// window is clamped to the number of periods present.
func Extract(doc payload.Document, window int) ([]Record, error) {
	periods, err := doc.Sub("properties", "periods")
	if err != nil {
		return nil, err
	}
	n, err := periods.Len()
	if err != nil {
		return nil, err
	}
	if window < n {
		n = max(window, 0)
	}

	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		rec, err := extractPeriod(periods, i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func extractPeriod(periods payload.Document, i int) (Record, error) {
	ts, err := periods.String(i, "startTime")
	if err != nil {
		return Record{}, err
	}
	temp, err := periods.Get(i, "temperature")
	if err != nil {
		return Record{}, err
	}
	humidity, err := periods.Get(i, "relativeHumidity", "value")
	if err != nil {
		return Record{}, err
	}
	windSpeed, err := periods.Get(i, "windSpeed")
	if err != nil {
		return Record{}, err
	}
	precip, err := periods.Get(i, "probabilityOfPrecipitation", "value")
	if err != nil {
		return Record{}, err
	}

	wind, err := parseWindSpeed(periods, windSpeed)
	if err != nil {
		return Record{}, fmt.Errorf("period %d: %w", i, err)
	}

	return Record{
		Timestamp:     ts,
		Temperature:   reading(temp),
		Humidity:      reading(humidity),
		Wind:          wind,
		Precipitation: reading(precip),
	}, nil
}

func reading(v any) Reading {
	if f, ok := v.(float64); ok {
		return Some(f)
	}
	return Absent
}

// parseWindSpeed turns "20 mph" into 20. NWS uses an empty string when there
// is no wind forecast.
func parseWindSpeed(doc payload.Document, v any) (Reading, error) {
	switch s := v.(type) {
	case nil:
		return Absent, nil
	case string:
		if s == "" {
			return Absent, nil
		}
		fields := strings.Fields(s)
		tokens := make([]any, len(fields))
		for i, f := range fields {
			tokens[i] = f
		}
		speed, err := payload.Wrap(tokens, doc.Origin()).Float(0)
		if err != nil {
			return Absent, err
		}
		return Some(speed), nil
	}
	return Absent, doc.Fail(fmt.Sprintf("windSpeed: unexpected %T", v))
}
