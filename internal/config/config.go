package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"

	"quizforge-backend/internal/cache"
)

var (
	ErrMissingValue = errors.New("missing required value")
	ErrInvalidValue = errors.New("invalid value")
)

// Config is the process configuration, loaded from the environment.
type Config struct {
	Port string
	Env  string

	// CacheBackend is "redis" or "memory". With "redis" and an empty
	// RedisURL the cache starts in permanently-unavailable mode.
	CacheBackend string
	RedisURL     string
	CachePrefix  string
	PregenTTL    time.Duration
	StatusTTL    time.Duration

	GeneratorBaseURL string
	GeneratorAPIKey  string
	GeneratorTimeout time.Duration
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		Port:             getenv("PORT", "8080"),
		Env:              getenv("ENV", "production"),
		CacheBackend:     getenv("CACHE_BACKEND", "redis"),
		RedisURL:         os.Getenv("REDIS_URL"),
		CachePrefix:      getenv("CACHE_PREFIX", "quizforge"),
		GeneratorBaseURL: getenv("GENERATOR_BASE_URL", "http://localhost:9090"),
		GeneratorAPIKey:  os.Getenv("GENERATOR_API_KEY"),
	}

	var err error
	if cfg.PregenTTL, err = getDuration("PREGEN_TTL", cache.DefaultBatchTTL); err != nil {
		return Config{}, err
	}
	if cfg.StatusTTL, err = getDuration("STATUS_TTL", cache.DefaultStatusTTL); err != nil {
		return Config{}, err
	}
	if cfg.GeneratorTimeout, err = getDuration("GENERATOR_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the process cannot run with. An
// absent Redis URL is deliberately NOT an error: the cache layer then
// runs in degraded mode.
func (c Config) Validate() error {
	switch c.CacheBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("%w: CACHE_BACKEND=%q (want redis or memory)", ErrInvalidValue, c.CacheBackend)
	}

	if c.PregenTTL <= 0 {
		return fmt.Errorf("%w: PREGEN_TTL must be positive", ErrInvalidValue)
	}
	if c.StatusTTL <= 0 {
		return fmt.Errorf("%w: STATUS_TTL must be positive", ErrInvalidValue)
	}

	if c.GeneratorAPIKey == "" {
		return fmt.Errorf("%w: GENERATOR_API_KEY", ErrMissingValue)
	}

	return nil
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getDuration parses a duration env var. Accepts extended forms like
// "1h30m" or "2d" in addition to plain Go durations.
func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}

	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, key, raw, err)
	}
	return d, nil
}
