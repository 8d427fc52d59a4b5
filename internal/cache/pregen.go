package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"quizforge-backend/pkg/logging/logging"
)

// DefaultBatchTTL is how long a precomputed batch stays retrievable.
const DefaultBatchTTL = 3600 * time.Second

// QuestionRecord is one precomputed question. The cache treats it as
// opaque: the producer decides the fields, the cache only serializes.
type QuestionRecord map[string]any

// PregenCache hands batches of precomputed questions from the slow
// generation pipeline to the fast request path. Writes are best-effort
// and reads are pop-once: the first successful TakeOnce removes the
// batch. Backend failures never propagate; callers see them only as
// misses or silently dropped writes.
type PregenCache struct {
	store   Store
	monitor *Monitor
	metrics *Collector
	ttl     time.Duration
}

// NewPregenCache builds the cache. ttl <= 0 selects DefaultBatchTTL.
func NewPregenCache(monitor *Monitor, collector *Collector, ttl time.Duration) *PregenCache {
	if ttl <= 0 {
		ttl = DefaultBatchTTL
	}
	return &PregenCache{
		store:   monitor.Store(),
		monitor: monitor,
		metrics: collector,
		ttl:     ttl,
	}
}

// Put stores a batch under (topicID, userID). The only errors it
// returns are contract violations (bad ids, non-positive ttl), checked
// before any backend interaction. Backend trouble is logged, counted,
// and reported as success: callers must not depend on writes landing.
func (c *PregenCache) Put(ctx context.Context, topicID, userID int64, items []QuestionRecord, ttl time.Duration) error {
	key := pregenKey(topicID, userID)
	if err := key.Validate(); err != nil {
		return err
	}
	if ttl < 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}
	if ttl == 0 {
		ttl = c.ttl
	}

	if !c.monitor.Available() {
		return nil
	}

	payload, err := msgpack.Marshal(items)
	if err != nil {
		c.warn(ctx, "pregen_marshal_failed", key, err)
		c.metrics.Error(NamespacePregen)
		return nil
	}

	if err := c.store.Set(ctx, key.String(), payload, ttl); err != nil {
		c.warn(ctx, "pregen_put_failed", key, err)
		c.metrics.Error(NamespacePregen)
		return nil
	}

	c.metrics.Write(NamespacePregen)
	return nil
}

// TakeOnce returns the batch stored under (topicID, userID) and
// removes it, so each written batch reaches exactly one caller under
// single-writer access. Under true concurrent callers on the same key
// the get+delete pair is not atomic and one duplicate delivery can
// slip through; the system stays correct because the loser falls back
// to synchronous generation.
//
// Absent, unavailable backend, backend error and corrupted payload all
// come back as (nil, false). Callers cannot and must not tell them
// apart.
func (c *PregenCache) TakeOnce(ctx context.Context, topicID, userID int64) ([]QuestionRecord, bool) {
	key := pregenKey(topicID, userID)
	if err := key.Validate(); err != nil {
		return nil, false
	}

	if !c.monitor.Available() {
		return nil, false
	}

	payload, found, err := c.store.Get(ctx, key.String())
	if err != nil {
		c.warn(ctx, "pregen_get_failed", key, err)
		c.metrics.Error(NamespacePregen)
		return nil, false
	}
	if !found {
		c.metrics.Miss(NamespacePregen)
		return nil, false
	}

	var items []QuestionRecord
	if err := msgpack.Unmarshal(payload, &items); err != nil {
		// Corrupted entry: treat as a miss and remove it so it does
		// not poison future reads.
		c.warn(ctx, "pregen_corrupt_entry", key, err)
		c.metrics.Error(NamespacePregen)
		if delErr := c.store.Delete(ctx, key.String()); delErr != nil {
			c.warn(ctx, "pregen_delete_failed", key, delErr)
		}
		return nil, false
	}

	// Pop: a failed delete is logged but the value is still returned.
	if err := c.store.Delete(ctx, key.String()); err != nil {
		c.warn(ctx, "pregen_delete_failed", key, err)
	}

	c.metrics.Hit(NamespacePregen)
	return items, true
}

// Invalidate drops any batch stored under (topicID, userID). Used by
// the admin surface to clear stale precomputed questions.
func (c *PregenCache) Invalidate(ctx context.Context, topicID, userID int64) error {
	key := pregenKey(topicID, userID)
	if err := key.Validate(); err != nil {
		return err
	}

	if !c.monitor.Available() {
		return nil
	}

	if err := c.store.Delete(ctx, key.String()); err != nil {
		c.warn(ctx, "pregen_invalidate_failed", key, err)
		c.metrics.Error(NamespacePregen)
	}
	return nil
}

func (c *PregenCache) warn(ctx context.Context, msg string, key Key, err error) {
	logging.Component(ctx, "pregen_cache").Warn(msg,
		zap.String("cache_region", NamespacePregen),
		zap.Int64("topic_id", key.TopicID),
		zap.Int64("user_id", key.UserID),
		zap.Error(err),
	)
}
