// Package config loads runtime configuration from environment and optional .env file
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	interchanges "github.com/juliuste/db-interchanges"
	"github.com/juliuste/db-interchanges/internal/logger"
)

type Config struct {
	Facility FacilityConfig
	Overpass OverpassConfig
	Registry RegistryConfig
	HTTP     HTTPConfig
	Logging  logger.Config
}

// FacilityConfig for facility status (FaSta) API
type FacilityConfig struct {
	URL string
	// Bearer token. Never defaulted.
	Token string
}

// OverpassConfig for map data source
type OverpassConfig struct {
	URL       string
	Retries   int
	RetryWait time.Duration
	// Meters
	Radius float64
	// Optional local OSM extract used instead of Overpass API
	OSMFile string
}

// RegistryConfig selects registry backend: JSON file or SQL database
type RegistryConfig struct {
	File   string
	Driver string
	DSN    string
}

type HTTPConfig struct {
	Addr        string
	Timeout     time.Duration
	CORSOrigins []string
}

// Load reads .env files (if present) and environment. Existing environment values win over .env ones.
func Load(envFiles ...string) (*Config, error) {
	for _, fname := range envFiles {
		if err := godotenv.Load(fname); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(err, "Can't load env file '%s'", fname)
		}
	}
	cfg := &Config{
		Facility: FacilityConfig{
			URL:   getEnv("FASTA_URL", interchanges.DEFAULT_FASTA_URL),
			Token: getEnv("FASTA_TOKEN", ""),
		},
		Overpass: OverpassConfig{
			URL:       getEnv("OVERPASS_URL", interchanges.DEFAULT_OVERPASS_URL),
			Retries:   getIntEnv("OVERPASS_RETRIES", interchanges.DEFAULT_OVERPASS_RETRIES),
			RetryWait: getDurationEnv("OVERPASS_RETRY_WAIT", interchanges.DEFAULT_OVERPASS_WAIT),
			Radius:    getFloatEnv("QUERY_RADIUS", interchanges.DEFAULT_QUERY_RADIUS),
			OSMFile:   getEnv("OSM_FILE", ""),
		},
		Registry: RegistryConfig{
			File:   getEnv("REGISTRY_FILE", ""),
			Driver: getEnv("REGISTRY_DRIVER", ""),
			DSN:    getEnv("REGISTRY_DSN", ""),
		},
		HTTP: HTTPConfig{
			Addr:        getEnv("HTTP_ADDR", ":8080"),
			Timeout:     getDurationEnv("HTTP_TIMEOUT", interchanges.DEFAULT_HTTP_TIMEOUT),
			CORSOrigins: getListEnv("CORS_ORIGINS", []string{"*"}),
		},
		Logging: logger.Config{
			Level:      getEnv("LOG_LEVEL", "info"),
			Console:    true,
			FilePath:   getEnv("LOG_FILE", ""),
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
	return cfg, nil
}

// Validate checks that exactly one registry backend is configured and numeric values make sense
func (cfg *Config) Validate() error {
	hasFile := cfg.Registry.File != ""
	hasSQL := cfg.Registry.Driver != "" || cfg.Registry.DSN != ""
	switch {
	case hasFile && hasSQL:
		return errors.New("Both REGISTRY_FILE and REGISTRY_DRIVER/REGISTRY_DSN are set")
	case !hasFile && !hasSQL:
		return errors.New("Either REGISTRY_FILE or REGISTRY_DRIVER/REGISTRY_DSN must be set")
	case hasSQL && (cfg.Registry.Driver == "" || cfg.Registry.DSN == ""):
		return errors.New("Both REGISTRY_DRIVER and REGISTRY_DSN must be set")
	}
	if cfg.Overpass.Radius <= 0 {
		return errors.Errorf("QUERY_RADIUS must be positive, got %f", cfg.Overpass.Radius)
	}
	if cfg.Overpass.Retries < 0 {
		return errors.Errorf("OVERPASS_RETRIES must not be negative, got %d", cfg.Overpass.Retries)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
