// Package console reads the line protocol on stdin and evaluates it against
// the configured geocoding and forecast sources.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/swelljoe/wthrq/internal/weather"
)

const endOfQueries = "NO MORE QUERIES"

// Source tokens accepted after a directive keyword.
const (
	SourceFile      = "FILE"
	SourceNominatim = "NOMINATIM"
	SourceNWS       = "NWS"
	SourcePlaces    = "PLACES"
)

// Directive is a source selection line such as "TARGET NOMINATIM Irvine, CA"
// or "WEATHER FILE nws_hourly.json".
type Directive struct {
	Source string
	Arg    string
}

// Script is one complete run read from input.
type Script struct {
	Target  Directive
	Weather Directive
	Queries []weather.Query
	Reverse Directive
}

// ReadScript reads the target and weather directives, query lines up to
// "NO MORE QUERIES", and the reverse directive that follows it.
func ReadScript(r io.Reader) (Script, error) {
	scanner := bufio.NewScanner(r)
	next := func(what string) (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read %s: %w", what, err)
			}
			return "", fmt.Errorf("read %s: unexpected end of input", what)
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	var script Script

	line, err := next("target")
	if err != nil {
		return Script{}, err
	}
	if script.Target, err = parseDirective(line, "TARGET", SourceNominatim, SourceFile, SourcePlaces); err != nil {
		return Script{}, err
	}

	line, err = next("weather")
	if err != nil {
		return Script{}, err
	}
	if script.Weather, err = parseDirective(line, "WEATHER", SourceNWS, SourceFile); err != nil {
		return Script{}, err
	}

	for {
		line, err = next("query")
		if err != nil {
			return Script{}, err
		}
		if line == endOfQueries {
			break
		}
		q, err := weather.ParseQuery(line)
		if err != nil {
			return Script{}, err
		}
		script.Queries = append(script.Queries, q)
	}

	line, err = next("reverse")
	if err != nil {
		return Script{}, err
	}
	if script.Reverse, err = parseDirective(line, "REVERSE", SourceNominatim, SourceFile); err != nil {
		return Script{}, err
	}

	return script, nil
}

func parseDirective(line, keyword string, sources ...string) (Directive, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != keyword {
		return Directive{}, fmt.Errorf("expected %s directive, got %q", keyword, line)
	}

	d := Directive{Source: fields[1], Arg: strings.Join(fields[2:], " ")}

	known := false
	for _, s := range sources {
		if d.Source == s {
			known = true
			break
		}
	}
	if !known {
		return Directive{}, fmt.Errorf("%s: unknown source %q (want one of %s)", keyword, d.Source, strings.Join(sources, ", "))
	}

	switch d.Source {
	case SourceFile, SourcePlaces:
		if d.Arg == "" {
			return Directive{}, fmt.Errorf("%s %s: missing argument", keyword, d.Source)
		}
	case SourceNominatim:
		if keyword == "TARGET" && d.Arg == "" {
			return Directive{}, fmt.Errorf("%s %s: missing search text", keyword, d.Source)
		}
	}

	return d, nil
}
