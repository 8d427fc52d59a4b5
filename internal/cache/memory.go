package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore implements Store in process memory. Used as the dev
// backend and as a test double; per-entry TTLs are enforced by a
// background janitor.
type MemoryStore struct {
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryStore creates an in-memory store. defaultTTL applies when a
// caller passes ttl <= 0; entries otherwise carry their own TTL.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}

	items := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go items.Start()

	return &MemoryStore{items: items}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := s.items.Get(key)
	if item == nil {
		return nil, false, nil
	}
	return item.Value(), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.DefaultTTL
	}

	// Copy to decouple from caller's buffer.
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	s.items.Set(key, valueCopy, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

// Ping always succeeds; process memory is never unreachable.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close stops the janitor goroutine. Call on shutdown or in tests.
func (s *MemoryStore) Close() error {
	s.items.Stop()
	return nil
}

// Len returns the number of items currently stored.
func (s *MemoryStore) Len() int {
	return s.items.Len()
}
