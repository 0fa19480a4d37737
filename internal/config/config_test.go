package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/clinic")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/clinic")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadParsesRedisURL(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/clinic")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://user:pw@redis.internal:6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
	assert.Equal(t, "user", cfg.RedisUsername)
	assert.Equal(t, "pw", cfg.RedisPassword)
}

func TestGetDurationForms(t *testing.T) {
	t.Setenv("SOME_TTL", "90")
	assert.Equal(t, 90*time.Second, getDuration("SOME_TTL", time.Minute))

	t.Setenv("SOME_TTL", "2m")
	assert.Equal(t, 2*time.Minute, getDuration("SOME_TTL", time.Minute))

	t.Setenv("SOME_TTL", "bogus")
	assert.Equal(t, time.Minute, getDuration("SOME_TTL", time.Minute))
}
