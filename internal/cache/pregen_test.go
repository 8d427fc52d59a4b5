package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore errors on every call. Simulates a backend that passed
// the startup probe but fails at steady state.
type failingStore struct{}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}
func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("backend down") }
func (failingStore) Ping(context.Context) error           { return nil }
func (failingStore) Close() error                         { return nil }

func newTestPregen(t *testing.T, store Store) (*PregenCache, *Collector) {
	t.Helper()

	monitor := NewMonitor(store, "memory")
	monitor.Initialize(context.Background())
	t.Cleanup(func() { monitor.Close() })

	collector := NewCollector(NamespacePregen, NamespaceStatus)
	return NewPregenCache(monitor, collector, 0), collector
}

func TestPregenPopOnce(t *testing.T) {
	c, collector := newTestPregen(t, NewMemoryStore(time.Minute))
	ctx := context.Background()

	items := []QuestionRecord{
		{"q": "What is the capital of France?", "a": "Paris"},
		{"q": "What is 2+2?", "a": "4"},
	}
	require.NoError(t, c.Put(ctx, 7, 42, items, time.Minute))

	got, ok := c.TakeOnce(ctx, 7, 42)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "Paris", got[0]["a"])
	assert.Equal(t, "4", got[1]["a"])

	// Second take on the same key observes the entry already removed.
	_, ok = c.TakeOnce(ctx, 7, 42)
	assert.False(t, ok)

	snap := collector.Snapshot()[NamespacePregen]
	assert.Equal(t, int64(1), snap.Hits)
	assert.Equal(t, int64(1), snap.Misses)
	assert.Equal(t, int64(1), snap.Writes)
	assert.Equal(t, int64(0), snap.Errors)
}

func TestPregenMissOnNeverWrittenKey(t *testing.T) {
	c, collector := newTestPregen(t, NewMemoryStore(time.Minute))

	_, ok := c.TakeOnce(context.Background(), 1, 2)
	assert.False(t, ok)

	snap := collector.Snapshot()[NamespacePregen]
	assert.Equal(t, int64(1), snap.Misses)
	assert.Equal(t, int64(0), snap.Hits)
}

func TestPregenContractErrors(t *testing.T) {
	c, _ := newTestPregen(t, NewMemoryStore(time.Minute))
	ctx := context.Background()

	err := c.Put(ctx, 0, 42, nil, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = c.Put(ctx, 7, -1, nil, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = c.Put(ctx, 7, 42, nil, -time.Second)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestPregenUnavailableBackend(t *testing.T) {
	// Nil store: no backend configured, monitor never becomes available.
	monitor := NewMonitor(nil, "none")
	monitor.Initialize(context.Background())
	t.Cleanup(func() { monitor.Close() })

	collector := NewCollector(NamespacePregen)
	c := NewPregenCache(monitor, collector, 0)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, 1, 1, []QuestionRecord{{"q": "x"}}, time.Minute))

	_, ok := c.TakeOnce(ctx, 1, 1)
	assert.False(t, ok)

	// Degraded mode does not move hit/miss counters.
	snap := collector.Snapshot()[NamespacePregen]
	assert.Equal(t, int64(0), snap.Hits)
	assert.Equal(t, int64(0), snap.Misses)
	assert.Equal(t, int64(0), snap.Writes)
}

func TestPregenSwallowsBackendErrors(t *testing.T) {
	c, collector := newTestPregen(t, failingStore{})
	ctx := context.Background()

	// Write failure is invisible to the caller.
	require.NoError(t, c.Put(ctx, 3, 4, []QuestionRecord{{"q": "x"}}, time.Minute))

	// Read failure looks like a miss.
	_, ok := c.TakeOnce(ctx, 3, 4)
	assert.False(t, ok)

	snap := collector.Snapshot()[NamespacePregen]
	assert.Equal(t, int64(2), snap.Errors)
	assert.Equal(t, int64(0), snap.Hits)
	assert.Equal(t, int64(0), snap.Misses)
}

func TestPregenCorruptedEntry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	c, collector := newTestPregen(t, store)
	ctx := context.Background()

	// Plant garbage at the pregen key directly.
	key := pregenKey(9, 9).String()
	require.NoError(t, store.Set(ctx, key, []byte("\xc1 not msgpack"), time.Minute))

	_, ok := c.TakeOnce(ctx, 9, 9)
	assert.False(t, ok)

	snap := collector.Snapshot()[NamespacePregen]
	assert.Equal(t, int64(1), snap.Errors)
	assert.Equal(t, int64(0), snap.Hits)

	// The poisoned entry is removed so it cannot hurt future reads.
	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPregenInvalidate(t *testing.T) {
	c, _ := newTestPregen(t, NewMemoryStore(time.Minute))
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, 5, 6, []QuestionRecord{{"q": "x"}}, time.Minute))
	require.NoError(t, c.Invalidate(ctx, 5, 6))

	_, ok := c.TakeOnce(ctx, 5, 6)
	assert.False(t, ok)
}
