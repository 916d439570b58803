package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := LoadWithDefaults()

	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, "0.0.0.0", cfg.APIHost)
	assert.Equal(t, "admin123", cfg.AdminPassword)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "giftvault.db", cfg.LocalDBPath)
	assert.NotEmpty(t, cfg.ServerURL)
}

func TestFileLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("api_port: 9999\nadmin_password: hunter2\nbase_url: https://gifts.example.com\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("GIFTVAULT_CONFIG", path)

	cfg := LoadWithDefaults()

	assert.Equal(t, 9999, cfg.APIPort)
	assert.Equal(t, "hunter2", cfg.AdminPassword)
	assert.Equal(t, "https://gifts.example.com", cfg.BaseURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.APIHost)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_port: 9999\n"), 0o600))
	t.Setenv("GIFTVAULT_CONFIG", path)
	t.Setenv("API_PORT", "7777")
	t.Setenv("ADMIN_PASSWORD", "from-env")
	t.Setenv("JWT_EXPIRY", "2h")

	cfg := LoadWithDefaults()

	assert.Equal(t, 7777, cfg.APIPort)
	assert.Equal(t, "from-env", cfg.AdminPassword)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing JWT secret is rejected", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("short JWT secret is rejected", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "too-short")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "32")
	})

	t.Run("valid configuration loads", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "a-secret-of-sufficient-length-123456")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "a-secret-of-sufficient-length-123456", cfg.JWTSecret)
	})
}

func TestBadEnvValuesFallBack(t *testing.T) {
	t.Setenv("API_PORT", "not-a-number")
	t.Setenv("JWT_EXPIRY", "eleventy")

	cfg := LoadWithDefaults()

	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
}
