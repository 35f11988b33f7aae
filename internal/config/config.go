// Package config loads settings from .env files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source selects where the results view reads its data from.
type Source string

const (
	// SourceMock renders the bundled sample dataset.
	SourceMock Source = "mock"
	// SourceBackend fetches summary and metrics from the backend.
	SourceBackend Source = "backend"
)

// Config holds the application configuration.
type Config struct {
	BackendURL           string
	SettingsPath         string
	DatabasePath         string
	LogPath              string
	LogLevel             string
	ExportDir            string
	ResultsSource        Source
	RequestTimeout       time.Duration
	HistoryRetentionDays int
	DesktopNotify        bool
	OpenReport           bool
}

const (
	appDirName = "sleep-insight"

	defaultBackendURL    = "http://localhost:8000"
	defaultLogLevel      = "info"
	defaultRetentionDays = 90
)

// Load reads configuration from the first .env file found and the environment.
// Variables already set in the environment take precedence over the file.
func Load() (*Config, error) {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	dir := defaultDir()
	cfg := &Config{
		BackendURL:           getEnvString("BACKEND_URL", defaultBackendURL),
		SettingsPath:         getEnvString("SETTINGS_PATH", filepath.Join(dir, "settings.json")),
		DatabasePath:         getEnvString("DATABASE_PATH", filepath.Join(dir, "history.db")),
		LogPath:              getEnvString("LOG_PATH", filepath.Join(dir, "sleep-insight.log")),
		LogLevel:             strings.ToLower(getEnvString("LOG_LEVEL", defaultLogLevel)),
		ExportDir:            getEnvString("EXPORT_DIR", filepath.Join(dir, "reports")),
		ResultsSource:        Source(strings.ToLower(getEnvString("RESULTS_SOURCE", string(SourceMock)))),
		RequestTimeout:       getEnvDuration("REQUEST_TIMEOUT", 0),
		HistoryRetentionDays: getEnvInt("HISTORY_RETENTION_DAYS", defaultRetentionDays),
		DesktopNotify:        getEnvBool("DESKTOP_NOTIFY", true),
		OpenReport:           getEnvBool("OPEN_REPORT", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for _, p := range []string{cfg.SettingsPath, cfg.DatabasePath, cfg.LogPath} {
		if err := ensureDir(filepath.Dir(p)); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
	}

	return cfg, nil
}

// Validate rejects values that cannot be used.
func (c *Config) Validate() error {
	switch c.ResultsSource {
	case SourceMock, SourceBackend:
	default:
		return fmt.Errorf("invalid RESULTS_SOURCE %q (want mock or backend)", c.ResultsSource)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	if c.HistoryRetentionDays < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must not be negative")
	}
	return nil
}

// UseBackend reports whether results come from the backend.
func (c *Config) UseBackend() bool {
	return c.ResultsSource == SourceBackend
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, "."+appDirName, ".env"),
		)
	}

	// parent directories, for running from a checkout
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"), filepath.Join(filepath.Dir(parent), ".env"))
	}

	return paths
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", appDirName)
}

func getEnvString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration accepts values like "30s" or "1m", or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
