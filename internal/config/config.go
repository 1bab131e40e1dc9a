// Package config loads the application configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backend identifiers.
const (
	StorageSQLite   = "sqlite"
	StorageJSONFile = "jsonfile"
)

// Config captures the settings of the calendar shell.
type Config struct {
	// Storage selects the persistence backend: sqlite or jsonfile.
	Storage string `yaml:"storage"`
	// SQLiteDSN is the database location for the sqlite backend.
	SQLiteDSN string `yaml:"sqlite_dsn"`
	// DataFile is the blob location for the jsonfile backend.
	DataFile string `yaml:"data_file"`
	// FirstHour and LastHour bound the visible day/week grid.
	FirstHour int `yaml:"first_hour"`
	LastHour  int `yaml:"last_hour"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file and no overrides are
// present.
func Default() Config {
	return Config{
		Storage:   StorageSQLite,
		SQLiteDSN: "file:calendar.db?_foreign_keys=on",
		DataFile:  "calendar-events.json",
		FirstHour: 8,
		LastHour:  20,
		LogLevel:  "info",
	}
}

// Load reads the YAML file at path (a missing file falls back to defaults),
// applies CALENDAR_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// First run: defaults apply.
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	invalid := make([]string, 0, 2)

	if v := strings.TrimSpace(os.Getenv("CALENDAR_STORAGE")); v != "" {
		cfg.Storage = v
	}
	if v := strings.TrimSpace(os.Getenv("CALENDAR_SQLITE_DSN")); v != "" {
		cfg.SQLiteDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("CALENDAR_DATA_FILE")); v != "" {
		cfg.DataFile = v
	}
	if v := strings.TrimSpace(os.Getenv("CALENDAR_FIRST_HOUR")); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			cfg.FirstHour = hour
		} else {
			invalid = append(invalid, "CALENDAR_FIRST_HOUR")
		}
	}
	if v := strings.TrimSpace(os.Getenv("CALENDAR_LAST_HOUR")); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			cfg.LastHour = hour
		} else {
			invalid = append(invalid, "CALENDAR_LAST_HOUR")
		}
	}
	if v := strings.TrimSpace(os.Getenv("CALENDAR_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("config: invalid environment values: %s", strings.Join(invalid, ", "))
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage {
	case StorageSQLite, StorageJSONFile:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage)
	}

	if c.FirstHour < 0 || c.FirstHour > 23 || c.LastHour < 0 || c.LastHour > 23 || c.LastHour < c.FirstHour {
		return fmt.Errorf("config: invalid grid hours %d..%d", c.FirstHour, c.LastHour)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}

	return nil
}

// SlogLevel translates the configured level into a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
