// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret signs access tokens. Required.
	JWTSecret string

	// JWTIssuer is the iss claim of issued tokens. Defaults to "travel-companion".
	JWTIssuer string

	// JWTTTL is the lifetime of an access token. Defaults to 24h.
	JWTTTL time.Duration

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart runs pending goose migrations before serving. Defaults to true.
	MigrateOnStart bool
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set and any
// values that cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		JWTIssuer:   getEnv("JWT_ISSUER", "travel-companion"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var errs []error
	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil || cfg.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL: must be a positive duration, got %q", os.Getenv("JWT_TTL")))
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES: must be a positive integer, got %q", os.Getenv("MAX_BODY_BYTES")))
	}
	if cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "true")); err != nil {
		errs = append(errs, fmt.Errorf("MIGRATE_ON_START: must be a boolean, got %q", os.Getenv("MIGRATE_ON_START")))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
