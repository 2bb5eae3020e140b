package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/flagx"
	"github.com/dmitrijs2005/nsghealth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so they may be strings like "3s" or nanoseconds.
type JsonConfig struct {
	DatabasePath         string         `json:"database_path"`
	SessionSecret        string         `json:"session_secret"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	RememberedSessionTTL timex.Duration `json:"remembered_session_ttl"`
	SeedDemoAccounts     *bool          `json:"seed_demo_accounts"`
	DeviceLocation       string         `json:"device_location"`
	GeolocationTimeout   timex.Duration `json:"geolocation_timeout"`
	ProviderSearchDelay  timex.Duration `json:"provider_search_delay"`
	QuickDispatchDelay   timex.Duration `json:"quick_dispatch_delay"`
	ConfirmationTimeout  timex.Duration `json:"confirmation_timeout"`
	SyncInterval         timex.Duration `json:"sync_interval"`
	LogBackend           string         `json:"log_backend"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays Config with the values present in the JSON file named
// by -c or -config. Absent keys keep their current value. Read or decode
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.SessionSecret, jc.SessionSecret)
	setString(&cfg.DeviceLocation, jc.DeviceLocation)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.SeedDemoAccounts != nil {
		cfg.SeedDemoAccounts = *jc.SeedDemoAccounts
	}

	setDuration(&cfg.SessionTTL, jc.SessionTTL)
	setDuration(&cfg.RememberedSessionTTL, jc.RememberedSessionTTL)
	setDuration(&cfg.GeolocationTimeout, jc.GeolocationTimeout)
	setDuration(&cfg.ProviderSearchDelay, jc.ProviderSearchDelay)
	setDuration(&cfg.QuickDispatchDelay, jc.QuickDispatchDelay)
	setDuration(&cfg.ConfirmationTimeout, jc.ConfirmationTimeout)
	setDuration(&cfg.SyncInterval, jc.SyncInterval)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
