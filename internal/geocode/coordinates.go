package geocode

import (
	"math"
	"strconv"
	"strings"
)

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// String renders the point with hemisphere letters instead of signs, e.g.
// "33.6461/N 117.8426/W".
func (c Coordinates) String() string {
	return hemisphere(c.Lat, "N", "S") + " " + hemisphere(c.Lon, "E", "W")
}

func hemisphere(v float64, pos, neg string) string {
	if v >= 0 {
		return FormatDecimal(v) + "/" + pos
	}
	return FormatDecimal(-v) + "/" + neg
}

// FormatDecimal renders v in its shortest round-trip form, keeping a ".0"
// on integral values so coordinates always read as decimals. Magnitudes
// below 1e-4 or from 1e16 up switch to exponent form, e.g. "1e-05".
func FormatDecimal(v float64) string {
	if a := math.Abs(v); v != 0 && !math.IsInf(v, 0) && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) || strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}
