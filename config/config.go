package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the client reads from the environment. All
// fields have working defaults so a bare `presenzo` run talks to a
// local devserver.
type Config struct {
	BaseURL   string
	StorePath string
	ExportDir string
	LogLevel  string

	RotatePeriod time.Duration
	PollPeriod   time.Duration
	HTTPTimeout  time.Duration

	// Static location fix used by the terminal client. The mobile app
	// gets this from the platform; here it comes from the environment.
	LocationGranted bool
	Lat             float64
	Lng             float64
	Accuracy        float64
}

// Load reads a .env file if one exists, then the environment.
func Load() (Config, error) {
	// A missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	cfg := Config{
		BaseURL:         getEnv("PRESENZO_BASE_URL", "http://localhost:8080/api"),
		StorePath:       getEnv("PRESENZO_STORE", defaultStorePath()),
		ExportDir:       getEnv("PRESENZO_EXPORT_DIR", "."),
		LogLevel:        getEnv("PRESENZO_LOG_LEVEL", "info"),
		RotatePeriod:    30 * time.Second,
		PollPeriod:      5 * time.Second,
		HTTPTimeout:     15 * time.Second,
		LocationGranted: getEnv("PRESENZO_LOCATION_GRANTED", "true") == "true",
	}

	var err error
	if cfg.RotatePeriod, err = getDuration("PRESENZO_ROTATE_PERIOD", cfg.RotatePeriod); err != nil {
		return Config{}, err
	}
	if cfg.PollPeriod, err = getDuration("PRESENZO_POLL_PERIOD", cfg.PollPeriod); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = getDuration("PRESENZO_HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Lat, err = getFloat("PRESENZO_LAT", 0); err != nil {
		return Config{}, err
	}
	if cfg.Lng, err = getFloat("PRESENZO_LNG", 0); err != nil {
		return Config{}, err
	}
	if cfg.Accuracy, err = getFloat("PRESENZO_ACCURACY", 10); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "presenzo.db"
	}
	return filepath.Join(home, ".presenzo", "presenzo.db")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}
