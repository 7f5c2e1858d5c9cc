package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return errors.New("tickers is required")
	}
	if c.WindowDays < 1 {
		return fmt.Errorf("window_days must be >= 1, got %d", c.WindowDays)
	}

	if c.Pipeline.MaxDailyChange <= 0 {
		return errors.New("pipeline.max_daily_change must be positive")
	}
	if c.Pipeline.Workers < 1 {
		return errors.New("pipeline.workers must be >= 1")
	}
	if c.Pipeline.FetchTimeoutSeconds < 1 || c.Pipeline.StoreTimeoutSeconds < 1 {
		return errors.New("pipeline timeouts must be >= 1 second")
	}

	switch c.Source.Provider {
	case SourceYahoo, SourceChartAPI:
	default:
		return fmt.Errorf("source.provider must be %q or %q, got %q",
			SourceYahoo, SourceChartAPI, c.Source.Provider)
	}

	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.Name == "" {
		return errors.New("database.name is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535, got %d", c.Database.Port)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis.enabled is set")
	}

	if c.Schedule.Cron == "" {
		return errors.New("schedule.cron is required")
	}
	if c.Schedule.RunTimeoutMinutes < 1 {
		return errors.New("schedule.run_timeout_minutes must be >= 1")
	}
	if c.Schedule.Timezone != "" {
		if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
			return fmt.Errorf("schedule.timezone: %w", err)
		}
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	return nil
}
