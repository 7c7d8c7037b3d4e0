package console

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/swelljoe/wthrq/internal/geocode"
	"github.com/swelljoe/wthrq/internal/weather"
)

const (
	forwardAttribution = "**Forward geocoding data from OpenStreetMap"
	nwsAttribution     = "**Real-time weather data from National Weather Service, United States Department of Commerce"
	reverseAttribution = "**Reverse geocoding data from OpenStreetMap"
)

// Session evaluates scripts against live and local sources.
type Session struct {
	nominatim  *geocode.Nominatim
	nws        *weather.NWS
	placesPath string
	log        zerolog.Logger
}

func NewSession(nominatim *geocode.Nominatim, nws *weather.NWS, placesPath string, log zerolog.Logger) *Session {
	return &Session{
		nominatim:  nominatim,
		nws:        nws,
		placesPath: placesPath,
		log:        log,
	}
}

// Run evaluates script and returns every output line. Nothing is returned
// unless the whole script succeeded. Sources are resolved in a fixed order
// (forward geocoder, forecast, reverse geocoder) so the first failing one is
// the one reported.
func (s *Session) Run(ctx context.Context, script Script) ([]string, error) {
	var attributions []string

	forward, closeForward, err := s.forward(ctx, script.Target)
	if err != nil {
		return nil, err
	}
	defer closeForward()
	if script.Target.Source == SourceNominatim {
		attributions = append(attributions, forwardAttribution)
	}

	forecast, err := s.forecast(ctx, script.Weather, forward)
	if err != nil {
		return nil, err
	}
	if script.Weather.Source == SourceNWS {
		attributions = append(attributions, nwsAttribution)
	}

	reverse, err := s.reverse(ctx, script.Reverse, forecast)
	if err != nil {
		return nil, err
	}
	if script.Reverse.Source == SourceNominatim {
		attributions = insertAt(attributions, 1, reverseAttribution)
	}

	target, err := forward.Coordinates()
	if err != nil {
		return nil, err
	}
	center, err := forecast.AverageCoordinates()
	if err != nil {
		return nil, err
	}
	location, err := reverse.Location()
	if err != nil {
		return nil, err
	}

	lines := []string{
		"TARGET " + target.String(),
		"FORECAST " + center.String(),
		location,
	}
	for _, q := range script.Queries {
		line, err := weather.Answer(q, forecast)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return append(lines, attributions...), nil
}

func (s *Session) forward(ctx context.Context, d Directive) (geocode.Forward, func(), error) {
	noop := func() {}
	switch d.Source {
	case SourceNominatim:
		fwd, err := s.nominatim.Search(ctx, d.Arg)
		return fwd, noop, err
	case SourcePlaces:
		places, err := geocode.OpenPlaces(s.placesPath, s.log)
		if err != nil {
			return nil, noop, err
		}
		closePlaces := func() {
			if err := places.Close(); err != nil {
				s.log.Warn().Err(err).Msg("close gazetteer")
			}
		}
		fwd, err := places.Search(d.Arg)
		if err != nil {
			closePlaces()
			return nil, noop, err
		}
		return fwd, closePlaces, nil
	default:
		s.log.Debug().Str("path", d.Arg).Msg("reading target file")
		fwd, err := geocode.ForwardFromFile(d.Arg)
		return fwd, noop, err
	}
}

func (s *Session) forecast(ctx context.Context, d Directive, forward geocode.Forward) (*weather.Forecast, error) {
	if d.Source != SourceNWS {
		s.log.Debug().Str("path", d.Arg).Msg("reading forecast file")
		return weather.LoadForecastFile(d.Arg)
	}

	at, err := forward.Coordinates()
	if err != nil {
		return nil, err
	}
	return s.nws.Hourly(ctx, at)
}

func (s *Session) reverse(ctx context.Context, d Directive, forecast *weather.Forecast) (geocode.Reverse, error) {
	if d.Source != SourceNominatim {
		s.log.Debug().Str("path", d.Arg).Msg("reading reverse file")
		return geocode.ReverseFromFile(d.Arg)
	}

	center, err := forecast.AverageCoordinates()
	if err != nil {
		return nil, err
	}
	return s.nominatim.Reverse(ctx, center)
}

// insertAt inserts v at index i, or appends it when the list is shorter.
func insertAt(list []string, i int, v string) []string {
	if i >= len(list) {
		return append(list, v)
	}
	list = append(list[:i+1], list[i:]...)
	list[i] = v
	return list
}
