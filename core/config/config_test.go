package config_test

import (
	"testing"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "RawData", cfg.Storage.RawDir)
	assert.Equal(t, "Extracted", cfg.Storage.ExtractDir)
	assert.Equal(t, "Temp", cfg.Storage.TempDir)
	assert.False(t, cfg.Storage.Mirror.Enabled)
	assert.Equal(t, "assets", cfg.Storage.Mirror.Bucket)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "assets.db", cfg.Database.Path)

	assert.Equal(t, "", cfg.Network.ProxyURL)
	assert.Equal(t, 30, cfg.Network.TimeoutSeconds)

	assert.Equal(t, 20, cfg.Download.Concurrency)
	assert.Equal(t, 5, cfg.Download.MaxRetries)
	assert.Equal(t, 120, cfg.Download.FetchTimeoutSeconds)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DOWNLOAD_CONCURRENCY", "8")
	t.Setenv("STORAGE_RAW_DIR", "/data/raw")
	t.Setenv("STORAGE_MIRROR_ENABLED", "true")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Download.Concurrency)
	assert.Equal(t, "/data/raw", cfg.Storage.RawDir)
	assert.True(t, cfg.Storage.Mirror.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched keys keep their defaults.
	assert.Equal(t, 5, cfg.Download.MaxRetries)
}
