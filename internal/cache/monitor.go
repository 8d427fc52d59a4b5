package cache

import (
	"context"
	"sync"
	"time"

	"quizforge-backend/pkg/logging/logging"

	"go.uber.org/zap"
)

// HealthState classifies a health-check result.
type HealthState string

const (
	StateHealthy   HealthState = "healthy"
	StateDegraded  HealthState = "degraded"
	StateUnhealthy HealthState = "unhealthy"
)

// Health is the on-demand health-check report.
type Health struct {
	State   HealthState   `json:"state"`
	Backend string        `json:"backend"`
	Latency time.Duration `json:"latency"`
}

// Monitor owns the availability flag for the cache backend. The flag
// is written only by Initialize and Close, which run at process
// startup/shutdown; every cache operation reads it to decide between
// normal and degraded mode.
type Monitor struct {
	store   Store
	backend string

	mu        sync.RWMutex
	available bool
	closed    bool
}

// NewMonitor wraps a store. A nil store means no backend was
// configured; the monitor stays permanently unavailable and Initialize
// skips the probe.
func NewMonitor(store Store, backend string) *Monitor {
	return &Monitor{store: store, backend: backend}
}

// Initialize probes the backend once with a bounded timeout. A failed
// probe is a warning, never a fatal error: the service starts in
// degraded mode and every cache operation no-ops.
func (m *Monitor) Initialize(ctx context.Context) {
	logger := logging.Component(ctx, "cache_monitor")

	if m.store == nil {
		logger.Warn("no cache backend configured, running without cache")
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	if err := m.store.Ping(probeCtx); err != nil {
		logger.Warn("cache backend unreachable, running in degraded mode",
			zap.String("backend", m.backend),
			zap.Duration("probe_latency", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	m.mu.Lock()
	m.available = true
	m.mu.Unlock()

	logger.Info("cache backend available",
		zap.String("backend", m.backend),
		zap.Duration("probe_latency", time.Since(start)),
	)
}

// Available reports whether the backend passed its startup probe.
// Steady-state call failures do not flip this flag; they are transient
// faults handled per call.
func (m *Monitor) Available() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available
}

// Store returns the backend handle, or nil when none is configured.
func (m *Monitor) Store() Store {
	return m.store
}

// Close releases the backend handle. Idempotent and safe when the
// monitor was never initialized.
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.available = false

	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

// HealthCheck pings the backend and reports the result without
// mutating the availability flag: a transient probe failure is
// surfaced to the caller, not cached as a state transition.
//
//	flag unavailable            -> degraded
//	flag available, probe fails -> unhealthy
//	probe ok                    -> healthy
func (m *Monitor) HealthCheck(ctx context.Context) Health {
	h := Health{Backend: m.backend}

	if m.store == nil {
		h.Backend = "none"
		h.State = StateDegraded
		return h
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err := m.store.Ping(probeCtx)
	h.Latency = time.Since(start)

	switch {
	case err == nil && m.Available():
		h.State = StateHealthy
	case !m.Available():
		h.State = StateDegraded
	default:
		h.State = StateUnhealthy
	}

	return h
}
