package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30, cfg.Cloudflare.TimeoutSeconds)
	assert.Equal(t, 50, cfg.Cloudflare.ZonesPerPage)
	assert.Equal(t, 100, cfg.Cloudflare.RecordsPerPage)
	assert.Equal(t, 0, cfg.Sync.IntervalSeconds)
	assert.Equal(t, "/etc/mydns/cloudflare.ini", cfg.Sync.CloudflareConfig)
	assert.Equal(t, "/etc/mydns/mydns.conf", cfg.Sync.MyDNSConfig)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SYNC_INTERVAL_SECONDS", "300")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 300, cfg.Sync.IntervalSeconds)
}
