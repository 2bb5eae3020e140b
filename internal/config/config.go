package config

import "time"

// Config holds runtime settings for the NSG Health CLI.
type Config struct {
	DatabasePath         string
	SessionSecret        string
	SessionTTL           time.Duration
	RememberedSessionTTL time.Duration
	SeedDemoAccounts     bool
	DeviceLocation       string
	GeolocationTimeout   time.Duration
	ProviderSearchDelay  time.Duration
	QuickDispatchDelay   time.Duration
	ConfirmationTimeout  time.Duration
	SyncInterval         time.Duration
	LogBackend           string
	LogLevel             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "nsghealth.db"
	c.SessionSecret = ""
	c.SessionTTL = 2 * time.Hour
	c.RememberedSessionTTL = 24 * time.Hour
	c.SeedDemoAccounts = true
	c.DeviceLocation = ""
	c.GeolocationTimeout = 10 * time.Second
	c.ProviderSearchDelay = 3 * time.Second
	c.QuickDispatchDelay = 2 * time.Second
	c.ConfirmationTimeout = 30 * time.Second
	c.SyncInterval = 30 * time.Second
	c.LogBackend = "slog"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
