package weather

import "math"

const (
	heatIndexThreshold = 68.0
	windChillThreshold = 50.0
	windChillMinWind   = 3.0
)

// FeelsLike returns the apparent temperature in °F for temperature t (°F),
// relative humidity h (%) and wind speed w (mph). Between 50°F and 68°F the
// air temperature is returned unchanged.
func FeelsLike(t, h, w float64) float64 {
	switch {
	case t >= heatIndexThreshold:
		return HeatIndex(t, h)
	case t <= windChillThreshold && w > windChillMinWind:
		return WindChill(t, w)
	default:
		return t
	}
}

// HeatIndex is the NWS Rothfusz regression.
func HeatIndex(t, h float64) float64 {
	return -42.379 +
		2.04901523*t +
		10.14333127*h +
		-0.22475541*t*h +
		-0.00683783*(t*t) +
		-0.05481717*(h*h) +
		0.00122874*(t*t)*h +
		0.00085282*t*(h*h) +
		-0.00000199*(t*t)*(h*h)
}

// WindChill is the 2001 NWS wind chill formula.
func WindChill(t, w float64) float64 {
	p := math.Pow(w, 0.16)
	return 35.74 +
		0.6215*t +
		-35.75*p +
		0.4275*t*p
}

// Celsius converts °F to °C.
func Celsius(f float64) float64 {
	return (f - 32) * 5 / 9
}
