package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	body := `storage: jsonfile
data_file: /tmp/events.json
first_hour: 6
last_hour: 22
log_level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage != StorageJSONFile || cfg.DataFile != "/tmp/events.json" {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.FirstHour != 6 || cfg.LastHour != 22 {
		t.Fatalf("grid hours not applied: %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("log level not applied: %v", cfg.SlogLevel())
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	if err := os.WriteFile(path, []byte("storage: sqlite\n"), 0o600); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	t.Setenv("CALENDAR_STORAGE", "jsonfile")
	t.Setenv("CALENDAR_DATA_FILE", "override.json")
	t.Setenv("CALENDAR_FIRST_HOUR", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage != StorageJSONFile {
		t.Fatalf("environment did not override storage: %q", cfg.Storage)
	}
	if cfg.DataFile != "override.json" || cfg.FirstHour != 7 {
		t.Fatalf("environment values not applied: %+v", cfg)
	}
}

func TestLoad_InvalidEnvironmentValuesAccumulate(t *testing.T) {
	t.Setenv("CALENDAR_FIRST_HOUR", "not-a-number")
	t.Setenv("CALENDAR_LAST_HOUR", "also-bad")

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected invalid environment values to fail the load")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage", func(c *Config) { c.Storage = "cloud" }},
		{"inverted hours", func(c *Config) { c.FirstHour, c.LastHour = 20, 8 }},
		{"hour out of range", func(c *Config) { c.LastHour = 24 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.validate(); err == nil {
				t.Fatalf("expected %s to be rejected", tc.name)
			}
		})
	}
}

func TestSlogLevelDefaultsToInfo(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("expected info, got %v", cfg.SlogLevel())
	}
}
