package cache

import (
	"sync"
	"sync/atomic"

	"quizforge-backend/internal/metrics"
)

// regionCounters holds the per-region counters. Atomics only: cache
// operations on the hot path must never block on metrics contention.
type regionCounters struct {
	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
	errors atomic.Int64
}

// RegionSnapshot is an immutable view of one region's counters.
type RegionSnapshot struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Writes  int64   `json:"writes"`
	Errors  int64   `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// Collector counts hits, misses, writes and swallowed errors per
// logical cache region. Every increment also feeds the matching
// prometheus counter so the same events are scrapeable.
type Collector struct {
	mu      sync.RWMutex
	regions map[string]*regionCounters
}

func NewCollector(regions ...string) *Collector {
	c := &Collector{regions: make(map[string]*regionCounters, len(regions))}
	for _, name := range regions {
		c.regions[name] = &regionCounters{}
	}
	return c
}

func (c *Collector) region(name string) *regionCounters {
	c.mu.RLock()
	r, ok := c.regions[name]
	c.mu.RUnlock()
	if ok {
		return r
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok = c.regions[name]; ok {
		return r
	}
	r = &regionCounters{}
	c.regions[name] = r
	return r
}

func (c *Collector) Hit(region string) {
	c.region(region).hits.Add(1)
	metrics.CacheHitsTotal.WithLabelValues(region).Inc()
}

func (c *Collector) Miss(region string) {
	c.region(region).misses.Add(1)
	metrics.CacheMissesTotal.WithLabelValues(region).Inc()
}

func (c *Collector) Write(region string) {
	c.region(region).writes.Add(1)
	metrics.CacheWritesTotal.WithLabelValues(region).Inc()
}

func (c *Collector) Error(region string) {
	c.region(region).errors.Add(1)
	metrics.CacheErrorsTotal.WithLabelValues(region).Inc()
}

// Snapshot returns an immutable copy of every region's counters.
func (c *Collector) Snapshot() map[string]RegionSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]RegionSnapshot, len(c.regions))
	for name, r := range c.regions {
		s := RegionSnapshot{
			Hits:   r.hits.Load(),
			Misses: r.misses.Load(),
			Writes: r.writes.Load(),
			Errors: r.errors.Load(),
		}
		s.HitRate = hitRate(s.Hits, s.Misses)
		out[name] = s
	}
	return out
}

// HitRate returns the overall hit rate across all regions, 0 when no
// reads have happened yet.
func (c *Collector) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var hits, misses int64
	for _, r := range c.regions {
		hits += r.hits.Load()
		misses += r.misses.Load()
	}
	return hitRate(hits, misses)
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
