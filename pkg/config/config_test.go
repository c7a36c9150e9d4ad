package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, int64(64<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"Fiji", "Nauru", "Chile", "Singapore", "USA", "UK"}, cfg.Parser.KnownCountries)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_MAX_BYTES", "1048576")
	t.Setenv("KNOWN_COUNTRIES", "Fiji, New Zealand ,,Japan")
	t.Setenv("LOG_JSON", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, int64(1<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"Fiji", "New Zealand", "Japan"}, cfg.Parser.KnownCountries)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadRejectsNonPositiveUploadLimit(t *testing.T) {
	t.Setenv("UPLOAD_MAX_BYTES", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPLOAD_MAX_BYTES")
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
