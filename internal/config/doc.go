// Package config loads runtime configuration for the NSG Health CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: an optional .env file in the working directory, then
//     NSG_* variables (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   SQLite database path
//	-s string   session signing secret
//	-t int      session lifetime (minutes)
//	-r int      remembered session lifetime (minutes)
//	-demo bool  seed demo accounts
//	-l string   device location "lat,lon" (empty: no geolocation)
//	-g int      geolocation timeout (seconds)
//	-p int      provider search delay (seconds)
//	-q int      quick dispatch delay (seconds)
//	-x int      confirmation timeout (seconds)
//	-i int      data sync interval (seconds)
//	-b string   log backend (slog or zap)
//	-v string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so "30s" and integer nanoseconds both work:
//
//	{
//	  "database_path": "nsghealth.db",
//	  "session_ttl": "2h",
//	  "device_location": "-1.2921,36.8219",
//	  "sync_interval": "30s",
//	  "log_backend": "zap"
//	}
package config
