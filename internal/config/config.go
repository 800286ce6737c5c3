// Package config loads and validates application configuration from
// environment variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/dayplanner/internal/repo"
)

// Config holds all configuration values for the API server and the CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// StoreDriver selects the day-record store: postgres, sqlite or file.
	StoreDriver string

	// DatabaseURL is the Postgres connection string. Required for postgres.
	DatabaseURL string

	// SQLitePath is the SQLite database file. Defaults to "dayplanner.db".
	SQLitePath string

	// FileStoreDir is the root directory of the file store. Defaults to "data".
	FileStoreDir string

	// RedisURL enables cross-process change notifications. Empty keeps
	// notifications in-process.
	RedisURL string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// SnapRadius bounds nearest-target matching of drops, in pixels.
	// Negative disables the bound. Defaults to 96.
	SnapRadius float64
}

// Load reads the optional env files (".env" when none are named) without
// overriding variables already set, then builds and validates a Config.
// Missing env files are ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config.Load: %s: %w", f, err)
		}
	}

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreDriver:  getEnv("STORE_DRIVER", repo.DriverPostgres),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SQLitePath:   getEnv("SQLITE_PATH", "dayplanner.db"),
		FileStoreDir: getEnv("FILE_STORE_DIR", "data"),
		RedisURL:     os.Getenv("REDIS_URL"),
	}

	var errs criterio.FieldErrorsBuilder

	var err error
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil {
		errs = errs.Append("MAX_BODY_BYTES", errors.New("must be an integer"))
	}
	if cfg.SnapRadius, err = strconv.ParseFloat(getEnv("DRAG_SNAP_RADIUS", "96"), 64); err != nil {
		errs = errs.Append("DRAG_SNAP_RADIUS", errors.New("must be a number"))
	}
	if err := errs.ToError(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values and cross-field requirements.
func (c Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("PORT", c.Port, validPort),
		criterio.Run("LOG_LEVEL", c.LogLevel, oneOf("debug", "info", "warn", "error")),
		criterio.Run("STORE_DRIVER", c.StoreDriver, oneOf(repo.DriverPostgres, repo.DriverSQLite, repo.DriverFile)),
		c.validateStore(),
		criterio.Run("REDIS_URL", c.RedisURL, validRedisURL),
		criterio.Run("MAX_BODY_BYTES", c.MaxBodyBytes, positive),
	)
}

// StoreOptions returns the repo options for the configured driver.
func (c Config) StoreOptions() repo.Options {
	return repo.Options{
		Driver:      c.StoreDriver,
		DatabaseURL: c.DatabaseURL,
		SQLitePath:  c.SQLitePath,
		FileDir:     c.FileStoreDir,
	}
}

func (c Config) validateStore() error {
	switch c.StoreDriver {
	case repo.DriverPostgres:
		if c.DatabaseURL == "" {
			return criterio.NewFieldErrors("DATABASE_URL", errors.New("required when STORE_DRIVER is postgres"))
		}
	case repo.DriverSQLite:
		if c.SQLitePath == "" {
			return criterio.NewFieldErrors("SQLITE_PATH", errors.New("required when STORE_DRIVER is sqlite"))
		}
	case repo.DriverFile:
		return criterio.Run("FILE_STORE_DIR", c.FileStoreDir, isDirectoryOrNotExist)
	}
	return nil
}

func oneOf(allowed ...string) func(string) error {
	return func(v string) error {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s, got %q", strings.Join(allowed, ", "), v)
	}
}

func validPort(p string) error {
	n, err := strconv.Atoi(p)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("must be a TCP port, got %q", p)
	}
	return nil
}

func validRedisURL(u string) error {
	if u == "" {
		return nil
	}
	if _, err := redis.ParseURL(u); err != nil {
		return err
	}
	return nil
}

func positive(n int64) error {
	if n <= 0 {
		return fmt.Errorf("must be positive, got %d", n)
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return errors.New("required")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // created on first write
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return errors.New("exists but is not a directory")
	}
	return nil
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
