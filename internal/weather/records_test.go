package weather

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swelljoe/wthrq/internal/failure"
	"github.com/swelljoe/wthrq/internal/payload"
)

const hourlyURL = "https://api.weather.gov/gridpoints/SGX/39,60/forecast/hourly"

func period(start string, temp, humidity any, wind any, precip any) string {
	enc := func(v any) string {
		switch x := v.(type) {
		case nil:
			return "null"
		case string:
			return fmt.Sprintf("%q", x)
		default:
			return fmt.Sprint(x)
		}
	}
	return fmt.Sprintf(`{"startTime": %q, "temperature": %s, "relativeHumidity": {"value": %s}, "windSpeed": %s, "probabilityOfPrecipitation": {"value": %s}}`,
		start, enc(temp), enc(humidity), enc(wind), enc(precip))
}

func forecastDoc(t *testing.T, origin failure.Provenance, periods ...string) payload.Document {
	t.Helper()
	body := `{"properties": {"periods": [` + strings.Join(periods, ",") + `]}}`
	doc, err := payload.Decode([]byte(body), origin)
	require.NoError(t, err)
	return doc
}

func TestReadingGet(t *testing.T) {
	v, ok := Some(0).Get()
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = Absent.Get()
	assert.False(t, ok)
}

func TestExtract(t *testing.T) {
	doc := forecastDoc(t, failure.FromPath("nws.json"),
		period("2024-01-15T15:00:00-08:00", 61, 30, "20 mph", 0),
		period("2024-01-15T16:00:00-08:00", 59, nil, "", nil),
		period("2024-01-15T17:00:00-08:00", 58, "", "10 to 15 mph", ""),
	)

	records, err := Extract(doc, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Record{
		Timestamp:     "2024-01-15T15:00:00-08:00",
		Temperature:   Some(61),
		Humidity:      Some(30),
		Wind:          Some(20),
		Precipitation: Some(0),
	}, records[0])
	assert.Equal(t, Record{
		Timestamp:   "2024-01-15T16:00:00-08:00",
		Temperature: Some(59),
	}, records[1])
	assert.Equal(t, Some(10), records[2].Wind)
	assert.Equal(t, Absent, records[2].Humidity)
	assert.Equal(t, Absent, records[2].Precipitation)
}

func TestExtract_ClampsWindow(t *testing.T) {
	var periods []string
	for i := 0; i < 7; i++ {
		periods = append(periods, period(fmt.Sprintf("2024-01-15T%02d:00:00Z", i), 60+i, 50, "5 mph", 10))
	}
	doc := forecastDoc(t, failure.FromPath("nws.json"), periods...)

	records, err := Extract(doc, 120)
	require.NoError(t, err)
	assert.Len(t, records, 7)

	records, err = Extract(doc, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-01-15T02:00:00Z", records[2].Timestamp)
}

func TestExtract_MissingPeriods(t *testing.T) {
	tests := []struct {
		name   string
		origin failure.Provenance
		want   string
	}{
		{"file", failure.FromPath("data/nws_hourly.json"), "data/nws_hourly.json"},
		{"url", failure.FromURL(hourlyURL, 200), "200 " + hourlyURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := payload.Decode([]byte(`{"properties": {}}`), tt.origin)
			require.NoError(t, err)

			_, err = Extract(doc, 5)
			var fmtErr *failure.DataFormatError
			require.True(t, errors.As(err, &fmtErr))
			assert.Equal(t, tt.want, fmtErr.Origin.String())
		})
	}
}

func TestExtract_MalformedPeriods(t *testing.T) {
	tests := []struct {
		name   string
		period string
	}{
		{"missing humidity", `{"startTime": "2024-01-15T15:00:00Z", "temperature": 61, "windSpeed": "5 mph", "probabilityOfPrecipitation": {"value": 0}}`},
		{"missing temperature", `{"startTime": "2024-01-15T15:00:00Z", "relativeHumidity": {"value": 1}, "windSpeed": "5 mph", "probabilityOfPrecipitation": {"value": 0}}`},
		{"numeric start time", `{"startTime": 12, "temperature": 61, "relativeHumidity": {"value": 1}, "windSpeed": "5 mph", "probabilityOfPrecipitation": {"value": 0}}`},
		{"wind without number", period("2024-01-15T15:00:00Z", 61, 30, "calm", 0)},
		{"numeric wind", period("2024-01-15T15:00:00Z", 61, 30, 5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := forecastDoc(t, failure.FromPath("nws.json"), tt.period)

			_, err := Extract(doc, 1)
			var fmtErr *failure.DataFormatError
			require.True(t, errors.As(err, &fmtErr), "got %v", err)
			assert.Equal(t, "nws.json", fmtErr.Origin.String())
		})
	}
}

func TestRecordFeelsLike(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   float64
		ok     bool
	}{
		{"heat index", Record{Temperature: Some(90), Humidity: Some(50)}, HeatIndex(90, 50), true},
		{"heat index without humidity", Record{Temperature: Some(90), Wind: Some(5)}, 0, false},
		{"wind chill", Record{Temperature: Some(30), Wind: Some(10)}, WindChill(30, 10), true},
		{"wind chill without wind", Record{Temperature: Some(30), Humidity: Some(50)}, 0, false},
		{"mild", Record{Temperature: Some(60)}, 60, true},
		{"no temperature", Record{Humidity: Some(50), Wind: Some(5)}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.record.FeelsLike()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
