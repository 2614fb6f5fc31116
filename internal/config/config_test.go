package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, 60*time.Second, cfg.Registry.TTL)
	assert.Equal(t, "gateway:provider:", cfg.Registry.KeyPrefix)
	assert.Equal(t, "gateway:api_keys", cfg.Auth.KeySetName)
	assert.True(t, cfg.Analytics.Enabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ENV", "test")
	t.Setenv("REGISTRY_TTL", "5m")
	t.Setenv("REDIS_ADDR", "redis:6380")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.Equal(t, 5*time.Minute, cfg.Registry.TTL)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
}

func TestLoadConfig_RejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("REGISTRY_TTL", "0s")

	_, err := LoadConfig()
	assert.Error(t, err)
}
