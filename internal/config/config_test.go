package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizforge-backend/internal/cache"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GENERATOR_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, "quizforge", cfg.CachePrefix)
	assert.Equal(t, cache.DefaultBatchTTL, cfg.PregenTTL)
	assert.Equal(t, cache.DefaultStatusTTL, cfg.StatusTTL)
	assert.Equal(t, 30*time.Second, cfg.GeneratorTimeout)

	// No REDIS_URL is not an error; the cache starts degraded.
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadTTLOverrides(t *testing.T) {
	t.Setenv("GENERATOR_API_KEY", "test-key")
	t.Setenv("PREGEN_TTL", "2h")
	t.Setenv("STATUS_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.PregenTTL)
	assert.Equal(t, 5*time.Minute, cfg.StatusTTL)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("GENERATOR_API_KEY", "test-key")
	t.Setenv("PREGEN_TTL", "not-a-duration")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestLoadInvalidBackend(t *testing.T) {
	t.Setenv("GENERATOR_API_KEY", "test-key")
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("GENERATOR_API_KEY", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingValue)
}
