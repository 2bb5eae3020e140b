package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "NSG_"

// parseEnv loads an optional .env file and overlays NSG_* variables.
// Malformed values panic, like the other stages.
func parseEnv(cfg *Config) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		panic(err)
	}
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("DB_PATH", &cfg.DatabasePath)
	str("SESSION_SECRET", &cfg.SessionSecret)
	str("DEVICE_LOCATION", &cfg.DeviceLocation)
	str("LOG_BACKEND", &cfg.LogBackend)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup(envPrefix + "SEED_DEMO"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sSEED_DEMO: %w", envPrefix, err)
		}
		cfg.SeedDemoAccounts = b
	}

	return errors.Join(
		dur("SESSION_TTL", &cfg.SessionTTL),
		dur("REMEMBERED_SESSION_TTL", &cfg.RememberedSessionTTL),
		dur("GEOLOCATION_TIMEOUT", &cfg.GeolocationTimeout),
		dur("PROVIDER_SEARCH_DELAY", &cfg.ProviderSearchDelay),
		dur("QUICK_DISPATCH_DELAY", &cfg.QuickDispatchDelay),
		dur("CONFIRMATION_TIMEOUT", &cfg.ConfirmationTimeout),
		dur("SYNC_INTERVAL", &cfg.SyncInterval),
	)
}
