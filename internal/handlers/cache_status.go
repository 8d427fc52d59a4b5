package handlers

import (
	"net/http"

	"quizforge-backend/internal/cache"
)

// CacheStatusHandler exposes the collector snapshot and backend health
// for operational introspection.
type CacheStatusHandler struct {
	Monitor   *cache.Monitor
	Collector *cache.Collector
}

func NewCacheStatusHandler(monitor *cache.Monitor, collector *cache.Collector) *CacheStatusHandler {
	return &CacheStatusHandler{Monitor: monitor, Collector: collector}
}

type backendHealth struct {
	State     cache.HealthState `json:"state"`
	Backend   string            `json:"backend"`
	LatencyMs float64           `json:"latency_ms"`
}

type cacheStatusResponse struct {
	Regions        map[string]cache.RegionSnapshot `json:"regions"`
	HitRatePercent float64                         `json:"hit_rate_percent"`
	Backend        backendHealth                   `json:"backend"`
}

// CacheStatus handles GET /internal/cache/status.
func (h *CacheStatusHandler) CacheStatus(w http.ResponseWriter, r *http.Request) {
	health := h.Monitor.HealthCheck(r.Context())

	writeJSON(w, http.StatusOK, cacheStatusResponse{
		Regions:        h.Collector.Snapshot(),
		HitRatePercent: h.Collector.HitRate() * 100,
		Backend: backendHealth{
			State:     health.State,
			Backend:   health.Backend,
			LatencyMs: float64(health.Latency.Microseconds()) / 1000.0,
		},
	})
}

// Healthz handles GET /healthz. The process serves traffic in both
// healthy and degraded cache states; only an available-but-failing
// backend reports 503.
func (h *CacheStatusHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	health := h.Monitor.HealthCheck(r.Context())

	status := http.StatusOK
	if health.State == cache.StateUnhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]string{
		"status": string(health.State),
		"cache":  health.Backend,
	})
}
