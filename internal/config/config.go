package config

import "time"

// Source providers.
const (
	SourceYahoo    = "yahoo"
	SourceChartAPI = "chart-api"
)

// Config is the root configuration for the ingest pipeline.
type Config struct {
	// Tickers to ingest on runs that do not name their own.
	Tickers []string `yaml:"tickers"`
	// WindowDays is how far back a run fetches when no explicit range is
	// given.
	WindowDays int `yaml:"window_days"`

	Pipeline PipelineConfig `yaml:"pipeline"`
	Source   SourceConfig   `yaml:"source"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PipelineConfig holds the per-run processing settings.
type PipelineConfig struct {
	MaxDailyChange      float64 `yaml:"max_daily_change"`
	FetchTimeoutSeconds int     `yaml:"fetch_timeout_seconds"`
	StoreTimeoutSeconds int     `yaml:"store_timeout_seconds"`
	Workers             int     `yaml:"workers"`
	Replace             bool    `yaml:"replace"`
}

// FetchTimeout returns the fetch stage timeout.
func (p PipelineConfig) FetchTimeout() time.Duration {
	return time.Duration(p.FetchTimeoutSeconds) * time.Second
}

// StoreTimeout returns the store stage timeout.
func (p PipelineConfig) StoreTimeout() time.Duration {
	return time.Duration(p.StoreTimeoutSeconds) * time.Second
}

// SourceConfig selects and tunes the market data provider.
type SourceConfig struct {
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the provider call timeout.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig holds the optional run announcement settings.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ScheduleConfig holds the daemon schedule.
type ScheduleConfig struct {
	Cron              string `yaml:"cron"`
	Timezone          string `yaml:"timezone"`
	RunOnStart        bool   `yaml:"run_on_start"`
	RunTimeoutMinutes int    `yaml:"run_timeout_minutes"`
}

// RunTimeout returns the per-run deadline for scheduled ingests.
func (s ScheduleConfig) RunTimeout() time.Duration {
	return time.Duration(s.RunTimeoutMinutes) * time.Minute
}

// MetricsConfig holds Prometheus metrics settings for the daemon.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LoggingConfig tunes the process logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}
