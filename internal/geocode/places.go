package geocode

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/swelljoe/wthrq/internal/db"
	"github.com/swelljoe/wthrq/internal/failure"
)

// Places resolves names against the local Census Gazetteer database built
// by "wthrq import-places".
type Places struct {
	db   *db.DB
	path string
	log  zerolog.Logger
}

// OpenPlaces opens the gazetteer at path read-only. A database that cannot
// be opened is reported as a MISSING source.
func OpenPlaces(path string, log zerolog.Logger) (*Places, error) {
	d, err := db.OpenReadOnly(path)
	if err != nil {
		return nil, &failure.SourceError{Origin: failure.FromPath(path), Cause: failure.CauseMissing, Err: err}
	}
	return &Places{db: d, path: path, log: log}, nil
}

// Search returns the best match for name, which may be "Name, ST".
func (p *Places) Search(name string) (Forward, error) {
	places, err := p.db.SearchPlaces(name)
	if err != nil {
		return nil, &failure.SourceError{Origin: failure.FromPath(p.path), Cause: failure.CauseFormat, Err: err}
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("place %q not found in %s", name, p.path)
	}

	best := places[0]
	p.log.Debug().
		Str("query", name).
		Str("place", best.Name).
		Str("state", best.State).
		Int("candidates", len(places)).
		Msg("gazetteer match")

	return fixed{Lat: best.Latitude, Lon: best.Longitude}, nil
}

// Close closes the gazetteer database.
func (p *Places) Close() error {
	return p.db.Close()
}

// fixed is a Forward whose coordinates are already known.
type fixed Coordinates

func (f fixed) Coordinates() (Coordinates, error) {
	return Coordinates(f), nil
}
