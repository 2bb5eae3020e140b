package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "nsghealth.db", c.DatabasePath)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
	assert.Equal(t, 24*time.Hour, c.RememberedSessionTTL)
	assert.True(t, c.SeedDemoAccounts)
	assert.Equal(t, 10*time.Second, c.GeolocationTimeout)
	assert.Equal(t, 3*time.Second, c.ProviderSearchDelay)
	assert.Equal(t, 2*time.Second, c.QuickDispatchDelay)
	assert.Equal(t, 30*time.Second, c.ConfirmationTimeout)
	assert.Equal(t, 30*time.Second, c.SyncInterval)
	assert.Equal(t, "slog", c.LogBackend)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Chdir(t.TempDir())

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "nsghealth.db", cfg.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Chdir(t.TempDir())

	t.Setenv("NSG_DB_PATH", "env.db")
	t.Setenv("NSG_LOG_LEVEL", "debug")
	t.Setenv("NSG_SYNC_INTERVAL", "45s")

	path := writeTempJSON(t, "", "", map[string]any{
		"database_path": "json.db",
		"sync_interval": "50s",
	})
	os.Args = []string{"testbin", "-c", path, "-i", "60"}

	cfg := LoadConfig()

	assert.Equal(t, "json.db", cfg.DatabasePath, "JSON overrides env")
	assert.Equal(t, "debug", cfg.LogLevel, "env overrides defaults")
	assert.Equal(t, 60*time.Second, cfg.SyncInterval, "flags override JSON")
}
