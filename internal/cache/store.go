package cache

import (
	"context"
	"time"
)

const (
	// opTimeout bounds every steady-state backend call. A partitioned
	// backend surfaces as an error after this long, never a hang.
	opTimeout = 2 * time.Second

	// probeTimeout bounds the startup connectivity probe.
	probeTimeout = 5 * time.Second
)

// Store is the interface over the remote key/value backend.
// Implemented by RedisStore (prod) and MemoryStore (dev/tests).
//
// Get returns (nil, false, nil) for a missing key; an error always
// means the backend call itself failed. Get followed by Delete is NOT
// atomic here; the pregen cache sequences the pair itself.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
