package weather

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/swelljoe/wthrq/internal/failure"
	"github.com/swelljoe/wthrq/internal/geocode"
	"github.com/swelljoe/wthrq/internal/payload"
	"github.com/swelljoe/wthrq/internal/remote"
)

// Forecast is an hourly forecast payload, loaded once per run either from a
// snapshot file or from the NWS API.
type Forecast struct {
	doc payload.Document
}

// NewForecast wraps an already decoded hourly forecast.
func NewForecast(doc payload.Document) *Forecast {
	return &Forecast{doc: doc}
}

// LoadForecastFile reads an hourly forecast snapshot.
func LoadForecastFile(path string) (*Forecast, error) {
	doc, err := payload.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewForecast(doc), nil
}

// Records extracts the first window periods. Extraction runs again on every
// call so each query sees the payload as loaded.
func (f *Forecast) Records(window int) ([]Record, error) {
	return Extract(f.doc, window)
}

// Origin returns where the forecast was loaded from.
func (f *Forecast) Origin() failure.Provenance {
	return f.doc.Origin()
}

// AverageCoordinates returns the centre of the forecast grid cell, the mean
// of the distinct vertices of its polygon. GeoJSON stores [lon, lat].
func (f *Forecast) AverageCoordinates() (geocode.Coordinates, error) {
	ring, err := f.doc.Sub("geometry", "coordinates", 0)
	if err != nil {
		return geocode.Coordinates{}, err
	}
	n, err := ring.Len()
	if err != nil {
		return geocode.Coordinates{}, err
	}

	seen := make(map[[2]float64]bool, n)
	var sumLat, sumLon float64
	for i := 0; i < n; i++ {
		lon, err := ring.Float(i, 0)
		if err != nil {
			return geocode.Coordinates{}, err
		}
		lat, err := ring.Float(i, 1)
		if err != nil {
			return geocode.Coordinates{}, err
		}

		key := [2]float64{lon, lat}
		if seen[key] {
			continue
		}
		seen[key] = true
		sumLat += lat
		sumLon += lon
	}

	if len(seen) == 0 {
		return geocode.Coordinates{}, f.doc.Fail("geometry.coordinates[0]: no vertices")
	}
	count := float64(len(seen))
	return geocode.Coordinates{Lat: sumLat / count, Lon: sumLon / count}, nil
}

// NWS resolves coordinates to the hourly forecast of the National Weather
// Service grid cell that contains them.
type NWS struct {
	client  *remote.Client
	baseURL string
}

// NewNWS creates an NWS forecast client rooted at baseURL.
func NewNWS(client *remote.Client, baseURL string) *NWS {
	return &NWS{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Hourly fetches /points for at and then follows its forecastHourly link.
// The API wants at most four decimals.
func (n *NWS) Hourly(ctx context.Context, at geocode.Coordinates) (*Forecast, error) {
	lat := geocode.FormatDecimal(roundTo(at.Lat, 4))
	lon := geocode.FormatDecimal(roundTo(at.Lon, 4))
	pointsURL := fmt.Sprintf("%s/points/%s,%s", n.baseURL, lat, lon)

	point, err := n.client.GetJSON(ctx, pointsURL, remote.AcceptGeoJSON)
	if err != nil {
		return nil, err
	}

	hourlyURL, err := point.String("properties", "forecastHourly")
	if err != nil {
		return nil, err
	}

	hourly, err := n.client.GetJSON(ctx, hourlyURL, remote.AcceptGeoJSON)
	if err != nil {
		return nil, err
	}
	return NewForecast(hourly), nil
}

// roundTo rounds the exact binary value of v to places decimals, the same
// rounding "%.4f" applies.
func roundTo(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}
