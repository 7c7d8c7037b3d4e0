package logging

import (
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// New returns a human readable logger writing to w, tagged with the service
// name and build revision.
func New(w io.Writer, service, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if level == "" {
		lvl = zerolog.WarnLevel
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Str("version", Version()).
		Logger(), nil
}

// Version is the VCS revision the binary was built from, with a trailing
// "+" for a modified tree.
func Version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	infoMap := map[string]string{}
	for _, s := range buildInfo.Settings {
		infoMap[s.Key] = s.Value
	}

	sha := infoMap["vcs.revision"]
	if sha == "" {
		return "devel"
	}
	if infoMap["vcs.modified"] == "true" {
		sha += "+"
	}
	return sha
}
