package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quizforge-backend/pkg/logging/logging"
)

// DefaultStatusTTL is how long a generation-status token lives.
const DefaultStatusTTL = 600 * time.Second

// StatusTracker stores a short-lived generation-status token per
// (topic, user) so the request path can report "still generating"
// instead of silently recomputing. The token vocabulary belongs to the
// producer ("pending", "generating", "ready", "failed", ...); the
// tracker stores whatever it is given. Statuses are polled, never
// consumed: GetStatus does not delete.
type StatusTracker struct {
	store   Store
	monitor *Monitor
	metrics *Collector
	ttl     time.Duration
}

func NewStatusTracker(monitor *Monitor, collector *Collector, ttl time.Duration) *StatusTracker {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &StatusTracker{
		store:   monitor.Store(),
		monitor: monitor,
		metrics: collector,
		ttl:     ttl,
	}
}

// SetStatus writes the token with the fixed status TTL. Contract
// violations (bad ids, empty status) are the only returned errors;
// backend trouble is logged, counted and swallowed.
func (t *StatusTracker) SetStatus(ctx context.Context, topicID, userID int64, status string) error {
	key := statusKey(topicID, userID)
	if err := key.Validate(); err != nil {
		return err
	}
	if status == "" {
		return ErrEmptyStatus
	}

	if !t.monitor.Available() {
		return nil
	}

	if err := t.store.Set(ctx, key.String(), []byte(status), t.ttl); err != nil {
		t.warn(ctx, "status_set_failed", key, err)
		t.metrics.Error(NamespaceStatus)
		return nil
	}

	t.metrics.Write(NamespaceStatus)
	return nil
}

// GetStatus returns the most recently set token within its TTL window.
// Unavailable backend and backend error both come back as ("", false),
// indistinguishable from "no generation in progress" - callers are
// designed to tolerate that ambiguity.
func (t *StatusTracker) GetStatus(ctx context.Context, topicID, userID int64) (string, bool) {
	key := statusKey(topicID, userID)
	if err := key.Validate(); err != nil {
		return "", false
	}

	if !t.monitor.Available() {
		return "", false
	}

	value, found, err := t.store.Get(ctx, key.String())
	if err != nil {
		t.warn(ctx, "status_get_failed", key, err)
		t.metrics.Error(NamespaceStatus)
		return "", false
	}
	if !found {
		t.metrics.Miss(NamespaceStatus)
		return "", false
	}

	t.metrics.Hit(NamespaceStatus)
	return string(value), true
}

// Invalidate drops the status token for (topicID, userID).
func (t *StatusTracker) Invalidate(ctx context.Context, topicID, userID int64) error {
	key := statusKey(topicID, userID)
	if err := key.Validate(); err != nil {
		return err
	}

	if !t.monitor.Available() {
		return nil
	}

	if err := t.store.Delete(ctx, key.String()); err != nil {
		t.warn(ctx, "status_invalidate_failed", key, err)
		t.metrics.Error(NamespaceStatus)
	}
	return nil
}

func (t *StatusTracker) warn(ctx context.Context, msg string, key Key, err error) {
	logging.Component(ctx, "status_tracker").Warn(msg,
		zap.String("cache_region", NamespaceStatus),
		zap.Int64("topic_id", key.TopicID),
		zap.Int64("user_id", key.UserID),
		zap.Error(err),
	)
}
