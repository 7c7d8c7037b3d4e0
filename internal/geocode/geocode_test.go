package geocode

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swelljoe/wthrq/internal/db"
	"github.com/swelljoe/wthrq/internal/failure"
	"github.com/swelljoe/wthrq/internal/remote"
)

type mockRoundTripper struct {
	handler http.Handler
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	m.handler.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

func newNominatim(handler http.HandlerFunc) *Nominatim {
	client := remote.NewClient(remote.Options{UserAgent: "test-agent"}, zerolog.Nop())
	client.HTTPClient.Transport = &mockRoundTripper{handler: handler}
	return NewNominatim(client, "https://nominatim.openstreetmap.org/")
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCoordinatesString(t *testing.T) {
	tests := []struct {
		name string
		in   Coordinates
		want string
	}{
		{"northwest", Coordinates{Lat: 33.6461, Lon: -117.8426}, "33.6461/N 117.8426/W"},
		{"southeast", Coordinates{Lat: -33.8688, Lon: 151.2093}, "33.8688/S 151.2093/E"},
		{"integral", Coordinates{Lat: 40, Lon: -74}, "40.0/N 74.0/W"},
		{"zero", Coordinates{Lat: 0, Lon: 0}, "0.0/N 0.0/E"},
		{"negative zero", Coordinates{Lat: math.Copysign(0, -1), Lon: 1.5}, "-0.0/N 1.5/E"},
		{"near the equator", Coordinates{Lat: 0.00001, Lon: -0.000015}, "1e-05/N 1.5e-05/W"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.String())
		})
	}
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "33.64606666666667", FormatDecimal(33.64606666666667))
	assert.Equal(t, "-117.8426", FormatDecimal(-117.8426))
	assert.Equal(t, "12.0", FormatDecimal(12))
	assert.Equal(t, "0.1", FormatDecimal(0.1))
	assert.Equal(t, "0.0", FormatDecimal(0))
	assert.Equal(t, "0.0001", FormatDecimal(0.0001))
	assert.Equal(t, "1e-05", FormatDecimal(0.00001))
	assert.Equal(t, "-1.5e-05", FormatDecimal(-0.000015))
	assert.Equal(t, "1000000000000000.0", FormatDecimal(1e15))
	assert.Equal(t, "1e+16", FormatDecimal(1e16))
}

func TestForwardFromFile(t *testing.T) {
	path := writeFile(t, "search.json", `[{"lat": "33.6461", "lon": "-117.8426", "display_name": "Irvine"}]`)

	fwd, err := ForwardFromFile(path)
	require.NoError(t, err)

	at, err := fwd.Coordinates()
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Lat: 33.6461, Lon: -117.8426}, at)
}

func TestForwardFromFile_NoResults(t *testing.T) {
	path := writeFile(t, "search.json", `[]`)

	fwd, err := ForwardFromFile(path)
	require.NoError(t, err)

	_, err = fwd.Coordinates()
	var fmtErr *failure.DataFormatError
	require.True(t, errors.As(err, &fmtErr))
	assert.Equal(t, path, fmtErr.Origin.String())
}

func TestForwardFromFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	_, err := ForwardFromFile(path)
	var srcErr *failure.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, failure.CauseMissing, srcErr.Cause)
	assert.Equal(t, path, srcErr.Origin.Path)
}

func TestReverseFromFile(t *testing.T) {
	path := writeFile(t, "reverse.json", `{"display_name": "Irvine, Orange County, California, United States"}`)

	rev, err := ReverseFromFile(path)
	require.NoError(t, err)

	name, err := rev.Location()
	require.NoError(t, err)
	assert.Equal(t, "Irvine, Orange County, California, United States", name)
}

func TestReverseFromFile_NotAString(t *testing.T) {
	path := writeFile(t, "reverse.json", `{"display_name": 12}`)

	rev, err := ReverseFromFile(path)
	require.NoError(t, err)

	_, err = rev.Location()
	var fmtErr *failure.DataFormatError
	assert.True(t, errors.As(err, &fmtErr))
}

func TestNominatimSearch(t *testing.T) {
	var gotURL string
	nominatim := newNominatim(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		assert.Equal(t, remote.AcceptJSON, r.Header.Get("Accept"))
		w.Write([]byte(`[{"lat": "33.6461", "lon": "-117.8426"}]`))
	})

	fwd, err := nominatim.Search(context.Background(), "Bren Hall, Irvine, CA")
	require.NoError(t, err)

	assert.Equal(t, "https://nominatim.openstreetmap.org/search?q=Bren+Hall%2C+Irvine%2C+CA&format=jsonv2", gotURL)

	at, err := fwd.Coordinates()
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Lat: 33.6461, Lon: -117.8426}, at)
}

func TestNominatimSearch_Not200(t *testing.T) {
	nominatim := newNominatim(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := nominatim.Search(context.Background(), "Irvine")
	var srcErr *failure.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, failure.CauseNot200, srcErr.Cause)
	assert.Equal(t, "403 https://nominatim.openstreetmap.org/search?q=Irvine&format=jsonv2", srcErr.Origin.String())
}

func TestNominatimReverse(t *testing.T) {
	var gotURL string
	nominatim := newNominatim(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Write([]byte(`{"display_name": "Irvine, California"}`))
	})

	rev, err := nominatim.Reverse(context.Background(), Coordinates{Lat: 33.64606666666667, Lon: -117.8426})
	require.NoError(t, err)

	assert.Equal(t, "https://nominatim.openstreetmap.org/reverse?lat=33.64606666666667&lon=-117.8426&format=jsonv2", gotURL)

	name, err := rev.Location()
	require.NoError(t, err)
	assert.Equal(t, "Irvine, California", name)
}

func TestPlaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.db")
	store, err := db.Open(path)
	require.NoError(t, err)
	_, err = store.Exec(
		"INSERT INTO places (name, state, latitude, longitude) VALUES (?, ?, ?, ?), (?, ?, ?, ?)",
		"Irvine", "CA", 33.678399, -117.772526,
		"Irvine", "KY", 37.7006, -83.9738,
	)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	places, err := OpenPlaces(path, zerolog.Nop())
	require.NoError(t, err)
	defer places.Close()

	fwd, err := places.Search("Irvine, KY")
	require.NoError(t, err)
	at, err := fwd.Coordinates()
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Lat: 37.7006, Lon: -83.9738}, at)

	_, err = places.Search("Atlantis")
	require.Error(t, err)
	var srcErr *failure.SourceError
	assert.False(t, errors.As(err, &srcErr))
}

func TestOpenPlaces_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := OpenPlaces(path, zerolog.Nop())
	var srcErr *failure.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, failure.CauseMissing, srcErr.Cause)
	assert.Equal(t, path, srcErr.Origin.String())
}
