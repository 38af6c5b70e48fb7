package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_PORT", "APP_HOST", "REDIS_ADDR", "REDIS_DB", "POSTGRES_DSN",
		"TICKET_NUMBER_PREFIX", "SEED_SAMPLE_DATA", "LOG_LEVEL", "APP_ENV",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "TKT", cfg.Tickets.NumberPrefix)
	assert.True(t, cfg.Tickets.SeedSampleData)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "development", cfg.Logger.Env)
	assert.False(t, cfg.Redis.Enabled())
	assert.Empty(t, cfg.Postgres.DSN)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TICKET_NUMBER_PREFIX", "CC")
	t.Setenv("SEED_SAMPLE_DATA", "false")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "production", cfg.Logger.Env)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "CC", cfg.Tickets.NumberPrefix)
	assert.False(t, cfg.Tickets.SeedSampleData)
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "redis db", key: "REDIS_DB", val: "abc"},
		{name: "prefix with space", key: "TICKET_NUMBER_PREFIX", val: "A B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
