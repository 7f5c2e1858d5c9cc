package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, but got %v", err)
	}
	if len(cfg.Tickers) == 0 {
		t.Error("Expected default tickers")
	}
	if cfg.WindowDays != DefaultWindowDays {
		t.Errorf("Expected window of %d days, but got %d", DefaultWindowDays, cfg.WindowDays)
	}
	if cfg.Pipeline.FetchTimeout() != 30*time.Second {
		t.Errorf("Expected 30s fetch timeout, but got %v", cfg.Pipeline.FetchTimeout())
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
tickers: [AAPL, MSFT]
window_days: 7
pipeline:
  max_daily_change: 0.25
  workers: 3
source:
  provider: chart-api
  base_url: http://localhost:8080
database:
  host: db.internal
  port: 5433
  user: etl
  password: ${TEST_DB_PASSWORD}
  name: stocks
redis:
  enabled: true
  addr: cache:6379
schedule:
  cron: "15 18 * * 1-5"
  run_on_start: true
`)
	t.Setenv("TEST_DB_PASSWORD", "hunter2")

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("Expected config to load, but got %v", err)
	}

	if len(cfg.Tickers) != 2 || cfg.Tickers[0] != "AAPL" {
		t.Errorf("Expected tickers from file, but got %v", cfg.Tickers)
	}
	if cfg.WindowDays != 7 {
		t.Errorf("Expected window_days 7, but got %d", cfg.WindowDays)
	}
	if cfg.Pipeline.MaxDailyChange != 0.25 || cfg.Pipeline.Workers != 3 {
		t.Errorf("Expected pipeline overrides, but got %+v", cfg.Pipeline)
	}
	if cfg.Source.Provider != SourceChartAPI {
		t.Errorf("Expected chart-api provider, but got %s", cfg.Source.Provider)
	}
	if cfg.Database.Password != "hunter2" {
		t.Errorf("Expected ${VAR} expansion, but got %q", cfg.Database.Password)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("Expected port 5433, but got %d", cfg.Database.Port)
	}

	// Untouched sections still get defaults.
	if cfg.Pipeline.FetchTimeoutSeconds != DefaultFetchTimeoutSeconds {
		t.Errorf("Expected default fetch timeout, but got %d", cfg.Pipeline.FetchTimeoutSeconds)
	}
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Expected default metrics port, but got %d", cfg.Metrics.Port)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "")

	cfg, err := LoadAndValidate(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected a missing file to be fine, but got %v", err)
	}
	if cfg.Database.Host != DefaultDBHost {
		t.Errorf("Expected default database host, but got %s", cfg.Database.Host)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "tickers: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected a parse error, but got none")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PIPELINE_TICKERS", "NVDA, AMD ,INTC")
	t.Setenv("DB_HOST", "override.db")
	t.Setenv("DB_PORT", "6000")

	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(cfg.Tickers, "/") != "NVDA/AMD/INTC" {
		t.Errorf("Expected tickers from env, but got %v", cfg.Tickers)
	}
	if cfg.Database.Host != "override.db" || cfg.Database.Port != 6000 {
		t.Errorf("Expected DB overrides, but got %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no tickers", func(c *Config) { c.Tickers = nil }, "tickers"},
		{"bad window", func(c *Config) { c.WindowDays = -1 }, "window_days"},
		{"bad threshold", func(c *Config) { c.Pipeline.MaxDailyChange = -0.5 }, "max_daily_change"},
		{"bad workers", func(c *Config) { c.Pipeline.Workers = 0 }, "workers"},
		{"bad provider", func(c *Config) { c.Source.Provider = "bloomberg" }, "source.provider"},
		{"no db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"bad db port", func(c *Config) { c.Database.Port = 70000 }, "database.port"},
		{"redis without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis.addr"},
		{"no cron", func(c *Config) { c.Schedule.Cron = "" }, "schedule.cron"},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, "timezone"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected a validation error, but got none")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, but got %v", tt.want, err)
			}
		})
	}
}
