package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadStorefrontConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, key := range []string{"SERVER_PORT", "STORE_BACKEND", "SYNC_POLL_SECONDS", "REQUIRE_PRODUCT_IMAGE", "ADMIN_DEV_PASSWORD"} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
		cfg := LoadStorefrontConfig()
		assert.Equal(t, ":8080", cfg.Server.Port)
		assert.Equal(t, BackendAuto, cfg.Backend)
		assert.Equal(t, 5*time.Second, cfg.SyncPoll)
		assert.True(t, cfg.RequireImage)
		assert.Equal(t, "admin123", cfg.AdminDevPassword)
	})

	t.Run("From environment", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("STORE_BACKEND", "Remote")
		t.Setenv("PRODUCT_DB_DSN", "postgres://localhost/shop")
		t.Setenv("SYNC_POLL_SECONDS", "30")
		t.Setenv("REQUIRE_PRODUCT_IMAGE", "false")

		cfg := LoadStorefrontConfig()
		assert.Equal(t, ":9000", cfg.Server.Port)
		assert.Equal(t, BackendRemote, cfg.Backend)
		assert.Equal(t, "postgres://localhost/shop", cfg.DB.DSN)
		assert.Equal(t, 30*time.Second, cfg.SyncPoll)
		assert.False(t, cfg.RequireImage)
	})

	t.Run("Unknown backend falls back to auto", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "firebase")
		t.Setenv("SYNC_POLL_SECONDS", "soon")
		cfg := LoadStorefrontConfig()
		assert.Equal(t, BackendAuto, cfg.Backend)
		assert.Equal(t, 5*time.Second, cfg.SyncPoll)
	})
}

func TestLoadDevServerConfig(t *testing.T) {
	t.Setenv("DEV_SERVER_PORT", "4000")
	cfg := LoadDevServerConfig()
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, ".", cfg.Root)
}
