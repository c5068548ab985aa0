// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
)

// Config holds all configuration values for the trips command.
// Values are populated by Load from environment variables.
type Config struct {
	// DatabaseURL is the Postgres connection string. Optional: when empty the
	// in-memory backend is used.
	DatabaseURL string

	// TripsFile is a flat file that seeds the in-memory backend on start and
	// receives its contents on exit. Ignored when DatabaseURL is set.
	TripsFile string

	// LogLevel controls the minimum log level. Defaults to "warn" so the CLI
	// stays quiet. Valid values: debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming any variable whose value is invalid.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		TripsFile:   os.Getenv("TRIPS_FILE"),
		LogLevel:    getEnv("LOG_LEVEL", "warn"),
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	return cfg, nil
}

// Level returns LogLevel as a slog.Level, falling back to warn.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// UsesMemory reports whether the in-memory backend is selected.
func (c Config) UsesMemory() bool {
	return c.DatabaseURL == ""
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
