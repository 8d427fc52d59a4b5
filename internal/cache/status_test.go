package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T, store Store, ttl time.Duration) (*StatusTracker, *Collector) {
	t.Helper()

	monitor := NewMonitor(store, "memory")
	monitor.Initialize(context.Background())
	t.Cleanup(func() { monitor.Close() })

	collector := NewCollector(NamespacePregen, NamespaceStatus)
	return NewStatusTracker(monitor, collector, ttl), collector
}

func TestStatusSetGet(t *testing.T) {
	tracker, collector := newTestTracker(t, NewMemoryStore(time.Minute), 0)
	ctx := context.Background()

	require.NoError(t, tracker.SetStatus(ctx, 3, 9, "generating"))

	status, ok := tracker.GetStatus(ctx, 3, 9)
	require.True(t, ok)
	assert.Equal(t, "generating", status)

	// Overwrite wins.
	require.NoError(t, tracker.SetStatus(ctx, 3, 9, "ready"))
	status, ok = tracker.GetStatus(ctx, 3, 9)
	require.True(t, ok)
	assert.Equal(t, "ready", status)

	// Polling does not consume.
	_, ok = tracker.GetStatus(ctx, 3, 9)
	assert.True(t, ok)

	snap := collector.Snapshot()[NamespaceStatus]
	assert.Equal(t, int64(3), snap.Hits)
	assert.Equal(t, int64(2), snap.Writes)
}

func TestStatusContractErrors(t *testing.T) {
	tracker, _ := newTestTracker(t, NewMemoryStore(time.Minute), 0)
	ctx := context.Background()

	assert.ErrorIs(t, tracker.SetStatus(ctx, 0, 9, "pending"), ErrInvalidKey)
	assert.ErrorIs(t, tracker.SetStatus(ctx, 3, 9, ""), ErrEmptyStatus)
}

func TestStatusUnavailableBackend(t *testing.T) {
	monitor := NewMonitor(nil, "none")
	monitor.Initialize(context.Background())
	t.Cleanup(func() { monitor.Close() })

	tracker := NewStatusTracker(monitor, NewCollector(NamespaceStatus), 0)
	ctx := context.Background()

	require.NoError(t, tracker.SetStatus(ctx, 1, 1, "pending"))

	_, ok := tracker.GetStatus(ctx, 1, 1)
	assert.False(t, ok)
}

func TestStatusTTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, RedisConfig{Prefix: "quizforge"})
	tracker, _ := newTestTracker(t, store, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, tracker.SetStatus(ctx, 3, 9, "generating"))

	status, ok := tracker.GetStatus(ctx, 3, 9)
	require.True(t, ok)
	assert.Equal(t, "generating", status)

	// Simulate the TTL window elapsing.
	mr.FastForward(31 * time.Second)

	_, ok = tracker.GetStatus(ctx, 3, 9)
	assert.False(t, ok)
}

func TestStatusNamespaceDisjointFromPregen(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	monitor := NewMonitor(store, "memory")
	monitor.Initialize(context.Background())
	t.Cleanup(func() { monitor.Close() })

	collector := NewCollector(NamespacePregen, NamespaceStatus)
	pregen := NewPregenCache(monitor, collector, 0)
	tracker := NewStatusTracker(monitor, collector, 0)
	ctx := context.Background()

	// Same (topic, user) pair in both regions on one shared backend.
	require.NoError(t, pregen.Put(ctx, 7, 42, []QuestionRecord{{"q": "x"}}, time.Minute))
	require.NoError(t, tracker.SetStatus(ctx, 7, 42, "ready"))

	items, ok := pregen.TakeOnce(ctx, 7, 42)
	require.True(t, ok)
	assert.Len(t, items, 1)

	// Consuming the batch leaves the status untouched.
	status, ok := tracker.GetStatus(ctx, 7, 42)
	require.True(t, ok)
	assert.Equal(t, "ready", status)
}
