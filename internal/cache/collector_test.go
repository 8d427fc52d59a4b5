package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorEmptyHitRate(t *testing.T) {
	c := NewCollector(NamespacePregen, NamespaceStatus)

	assert.Equal(t, 0.0, c.HitRate())

	snap := c.Snapshot()
	assert.Equal(t, 0.0, snap[NamespacePregen].HitRate)
}

func TestCollectorSnapshot(t *testing.T) {
	c := NewCollector(NamespacePregen, NamespaceStatus)

	c.Hit(NamespacePregen)
	c.Hit(NamespacePregen)
	c.Hit(NamespacePregen)
	c.Miss(NamespacePregen)
	c.Write(NamespacePregen)
	c.Error(NamespaceStatus)

	snap := c.Snapshot()
	assert.Equal(t, int64(3), snap[NamespacePregen].Hits)
	assert.Equal(t, int64(1), snap[NamespacePregen].Misses)
	assert.Equal(t, int64(1), snap[NamespacePregen].Writes)
	assert.Equal(t, 0.75, snap[NamespacePregen].HitRate)
	assert.Equal(t, int64(1), snap[NamespaceStatus].Errors)

	assert.Equal(t, 0.75, c.HitRate())
}

func TestCollectorUnknownRegionLazilyCreated(t *testing.T) {
	c := NewCollector()

	c.Hit("adhoc")
	assert.Equal(t, int64(1), c.Snapshot()["adhoc"].Hits)
}

func TestCollectorConcurrentIncrements(t *testing.T) {
	c := NewCollector(NamespacePregen)

	const goroutines = 16
	const perGoroutine = 500

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				c.Hit(NamespacePregen)
				c.Miss(NamespacePregen)
				c.Write(NamespacePregen)
				c.Error(NamespacePregen)
			}
		}()
	}
	wg.Wait()

	want := int64(goroutines * perGoroutine)
	snap := c.Snapshot()[NamespacePregen]
	assert.Equal(t, want, snap.Hits)
	assert.Equal(t, want, snap.Misses)
	assert.Equal(t, want, snap.Writes)
	assert.Equal(t, want, snap.Errors)
}
