package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. os.Args is
// filtered with flagx.FilterArgs so the -c/-config flag of the JSON stage
// does not trip this FlagSet.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-d", "-s", "-t", "-r", "-demo", "-l", "-g", "-p", "-q", "-x", "-i", "-b", "-v",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.SessionSecret, "s", cfg.SessionSecret, "session signing secret")
	sessionTTL := fs.Int("t", int(cfg.SessionTTL.Minutes()), "session lifetime (in minutes)")
	rememberedTTL := fs.Int("r", int(cfg.RememberedSessionTTL.Minutes()), "remembered session lifetime (in minutes)")
	fs.BoolVar(&cfg.SeedDemoAccounts, "demo", cfg.SeedDemoAccounts, "seed demo accounts")
	fs.StringVar(&cfg.DeviceLocation, "l", cfg.DeviceLocation, "device location as lat,lon")
	geoTimeout := fs.Int("g", int(cfg.GeolocationTimeout.Seconds()), "geolocation timeout (in seconds)")
	searchDelay := fs.Int("p", int(cfg.ProviderSearchDelay.Seconds()), "provider search delay (in seconds)")
	dispatchDelay := fs.Int("q", int(cfg.QuickDispatchDelay.Seconds()), "quick dispatch delay (in seconds)")
	confirmTimeout := fs.Int("x", int(cfg.ConfirmationTimeout.Seconds()), "confirmation timeout (in seconds)")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "data sync interval (in seconds)")
	fs.StringVar(&cfg.LogBackend, "b", cfg.LogBackend, "log backend (slog or zap)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations are only replaced when their flag was given, so sub-unit
	// values from earlier stages survive.
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	apply := func(name string, dst *time.Duration, v int, unit time.Duration) {
		if set[name] {
			*dst = time.Duration(v) * unit
		}
	}
	apply("t", &cfg.SessionTTL, *sessionTTL, time.Minute)
	apply("r", &cfg.RememberedSessionTTL, *rememberedTTL, time.Minute)
	apply("g", &cfg.GeolocationTimeout, *geoTimeout, time.Second)
	apply("p", &cfg.ProviderSearchDelay, *searchDelay, time.Second)
	apply("q", &cfg.QuickDispatchDelay, *dispatchDelay, time.Second)
	apply("x", &cfg.ConfirmationTimeout, *confirmTimeout, time.Second)
	apply("i", &cfg.SyncInterval, *syncInterval, time.Second)
}
