package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	// UserAgent identifies the application to NWS and Nominatim, both of
	// which reject anonymous clients.
	UserAgent string `validate:"required"`
	Referer   string `validate:"omitempty,url"`

	NWSBaseURL       string `validate:"required,url"`
	NominatimBaseURL string `validate:"required,url"`

	// FetchDelay is slept before every outbound request.
	FetchDelay  time.Duration `validate:"gte=0s"`
	HTTPTimeout time.Duration `validate:"gt=0s"`

	// DBPath is the sqlite gazetteer used by TARGET PLACES and import-places.
	DBPath string `validate:"required"`

	LogLevel string `validate:"oneof=trace debug info warn error"`
}

var validate = validator.New()

// Load reads configuration from the environment with defaults. Variables in
// envFiles (or ./.env when none are given) are loaded first but never
// override the real environment.
func Load(log zerolog.Logger, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env: %w", err)
		}
		log.Info().Msg("no .env file found, using environment")
	}

	cfg := &Config{
		UserAgent:        getenvDefault("NWS_USER_AGENT", "wthrq/1.0 (contact@wthr.lol)"),
		Referer:          os.Getenv("NOMINATIM_REFERER"),
		NWSBaseURL:       getenvDefault("NWS_BASE_URL", "https://api.weather.gov"),
		NominatimBaseURL: getenvDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		DBPath:           getenvDefault("DB_PATH", "data/places.db"),
		LogLevel:         getenvDefault("LOG_LEVEL", "warn"),
	}

	var err error
	if cfg.FetchDelay, err = getenvDuration("FETCH_DELAY", "1s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg after flags have been applied on top of it.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
