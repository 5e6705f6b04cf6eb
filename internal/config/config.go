// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. When empty the server
	// keeps everything in memory and loses it on restart.
	DatabaseURL string

	// RedisAddr is the host:port of the Redis server holding polished
	// descriptions. When empty the overlay is kept in memory.
	RedisAddr string

	// PolishTTL is how long a polished description survives in Redis.
	// Defaults to 24h.
	PolishTTL time.Duration

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// ShareBaseURL prefixes client share links. Defaults to https://hila-travel.app.
	ShareBaseURL string

	// MaxBodyBytes caps request body size. Defaults to 1 MiB.
	MaxBodyBytes int64

	// ImportConcurrency bounds parallel link extractions and description
	// enhancements. Defaults to 4.
	ImportConcurrency int
}

// Load reads configuration from environment variables and returns a Config.
// Each file in envFiles is loaded first with godotenv; when none are given
// ".env" in the working directory is tried. Missing files are skipped and
// variables already set in the environment win.
// Returns an error naming every variable whose value cannot be parsed.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		ShareBaseURL: strings.TrimRight(getEnv("SHARE_BASE_URL", "https://hila-travel.app"), "/"),
	}

	var invalid []string

	ttl, err := time.ParseDuration(getEnv("POLISH_TTL", "24h"))
	if err != nil || ttl <= 0 {
		invalid = append(invalid, "POLISH_TTL")
	}
	cfg.PolishTTL = ttl

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || maxBody <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}
	cfg.MaxBodyBytes = maxBody

	conc, err := strconv.Atoi(getEnv("IMPORT_CONCURRENCY", "4"))
	if err != nil || conc < 1 {
		invalid = append(invalid, "IMPORT_CONCURRENCY")
	}
	cfg.ImportConcurrency = conc

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
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
