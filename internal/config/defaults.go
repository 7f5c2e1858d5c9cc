package config

// Default values for optional configuration fields.
const (
	DefaultWindowDays           = 30
	DefaultMaxDailyChange       = 0.5
	DefaultFetchTimeoutSeconds  = 30
	DefaultStoreTimeoutSeconds  = 30
	DefaultWorkers              = 1
	DefaultSourceProvider       = SourceYahoo
	DefaultSourceTimeoutSeconds = 30
	DefaultDBHost               = "localhost"
	DefaultDBPort               = 5432
	DefaultDBUser               = "pipeline"
	DefaultDBName               = "pipeline"
	DefaultDBSSLMode            = "disable"
	DefaultRedisAddr            = "localhost:6379"
	DefaultCron                 = "0 18 * * 1-5"
	DefaultRunTimeoutMinutes    = 10
	DefaultMetricsPort          = 9090
	DefaultMetricsPath          = "/metrics"
	DefaultLogLevel             = "info"
)

// DefaultTickers are ingested when no tickers are configured anywhere.
var DefaultTickers = []string{"AAPL", "MSFT", "GOOGL"}

func (c *Config) applyDefaults() {
	if len(c.Tickers) == 0 {
		c.Tickers = append([]string(nil), DefaultTickers...)
	}
	if c.WindowDays == 0 {
		c.WindowDays = DefaultWindowDays
	}

	// Pipeline defaults
	if c.Pipeline.MaxDailyChange == 0 {
		c.Pipeline.MaxDailyChange = DefaultMaxDailyChange
	}
	if c.Pipeline.FetchTimeoutSeconds == 0 {
		c.Pipeline.FetchTimeoutSeconds = DefaultFetchTimeoutSeconds
	}
	if c.Pipeline.StoreTimeoutSeconds == 0 {
		c.Pipeline.StoreTimeoutSeconds = DefaultStoreTimeoutSeconds
	}
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = DefaultWorkers
	}

	// Source defaults
	if c.Source.Provider == "" {
		c.Source.Provider = DefaultSourceProvider
	}
	if c.Source.TimeoutSeconds == 0 {
		c.Source.TimeoutSeconds = DefaultSourceTimeoutSeconds
	}

	// Database defaults
	if c.Database.Host == "" {
		c.Database.Host = DefaultDBHost
	}
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.User == "" {
		c.Database.User = DefaultDBUser
	}
	if c.Database.Name == "" {
		c.Database.Name = DefaultDBName
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}

	// Schedule defaults
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = DefaultCron
	}
	if c.Schedule.RunTimeoutMinutes == 0 {
		c.Schedule.RunTimeoutMinutes = DefaultRunTimeoutMinutes
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
