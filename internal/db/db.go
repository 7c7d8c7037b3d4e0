package db

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB wraps the local gazetteer database
type DB struct {
	*sql.DB
}

// Place is a named point from the Census Gazetteer
type Place struct {
	ID        int64
	Name      string
	State     string
	Latitude  float64
	Longitude float64
}

const schema = `
CREATE TABLE IF NOT EXISTS places (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT NOT NULL,
	state     TEXT NOT NULL DEFAULT '',
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_places_name ON places (name COLLATE NOCASE);
`

const searchLimit = 10

// Open opens (creating if needed) the gazetteer at path for writing.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// OpenReadOnly opens an existing gazetteer. It fails if path does not exist.
func OpenReadOnly(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// SearchPlaces returns places whose name starts with query, shortest names
// first. "Name, ST" restricts the match to a state.
func (d *DB) SearchPlaces(query string) ([]Place, error) {
	if d == nil || d.DB == nil {
		return nil, errors.New("database not initialized")
	}

	name, state, _ := strings.Cut(query, ",")
	term := sanitizeTerm(strings.TrimSpace(name))
	if term == "" {
		return nil, nil
	}

	sqlQuery := `SELECT id, name, state, latitude, longitude FROM places WHERE name LIKE ? ESCAPE '\'`
	args := []any{term + "%"}
	if state = strings.TrimSpace(state); state != "" {
		sqlQuery += ` AND state = ?`
		args = append(args, strings.ToUpper(state))
	}
	sqlQuery += ` ORDER BY length(name), name LIMIT ?`
	args = append(args, searchLimit)

	rows, err := d.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer rows.Close()

	var places []Place
	for rows.Next() {
		var p Place
		if err := rows.Scan(&p.ID, &p.Name, &p.State, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// sanitizeTerm drops query syntax characters and escapes LIKE wildcards.
func sanitizeTerm(term string) string {
	var b strings.Builder
	for _, r := range term {
		switch r {
		case '"', '(', ')', '^', '*':
			continue
		case '%', '_', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ImportPlaces loads a Census Gazetteer places file (tab separated, with a
// header row) and returns the number of places inserted. Malformed lines are
// skipped. Any other read error aborts the import and nothing is committed.
func (d *DB) ImportPlaces(r io.Reader, log zerolog.Logger) (int, error) {
	tx, err := d.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO places (name, state, latitude, longitude) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			log.Debug().Int("line", parseErr.Line).Err(err).Msg("skipping malformed line")
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("read places: %w", err)
		}

		// USPS(0) GEOID(1) ANSICODE(2) NAME(3) LSAD(4) FUNCSTAT(5) ALAND(6)
		// AWATER(7) ALAND_SQMI(8) AWATER_SQMI(9) INTPTLAT(10) INTPTLONG(11)
		if len(record) < 12 {
			continue
		}

		state := strings.TrimSpace(record[0])
		name := cleanPlaceName(strings.TrimSpace(record[3]))

		lat, lon, err := parseAndValidateCoordinates(strings.TrimSpace(record[10]), strings.TrimSpace(record[11]))
		if err != nil {
			log.Debug().Str("place", name).Err(err).Msg("skipping place")
			continue
		}

		if _, err := stmt.Exec(name, state, lat, lon); err != nil {
			log.Debug().Str("place", name).Err(err).Msg("insert failed")
			continue
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func cleanPlaceName(name string) string {
	suffixes := []string{" city", " town", " village", " CDP", " borough"}
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return name[:len(name)-len(s)]
		}
	}
	return name
}

// parseAndValidateCoordinates parses and validates latitude and longitude strings
func parseAndValidateCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude out of range: %f", lat)
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("longitude out of range: %f", lon)
	}

	return lat, lon, nil
}
