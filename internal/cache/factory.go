package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Backend string // "redis" or "memory"
	TTL     time.Duration
	Prefix  string
}

// NewStore selects the backend implementation by config. A redis
// backend without a client yields nil, which the Monitor treats as
// permanently unavailable.
func NewStore(cfg Config, redisClient *redis.Client) Store {
	switch cfg.Backend {
	case "redis":
		if redisClient == nil {
			return nil
		}
		return NewRedisStore(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
		})
	default:
		return NewMemoryStore(cfg.TTL)
	}
}
