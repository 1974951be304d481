package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"smishguard/internal/analysis/reputation"
	"smishguard/internal/infrastructure/cache"
	"smishguard/pkg/logger"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	redis      *cache.RedisStore
	reputation *reputation.Aggregator
	version    string
	logger     *logger.Logger
	startTime  time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(redis *cache.RedisStore, agg *reputation.Aggregator, version string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		redis:      redis,
		reputation: agg,
		version:    version,
		logger:     log.WithComponent("health"),
		startTime:  time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Ready handles GET /ready - checks all dependencies
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := http.StatusOK
	overallStatus := "ready"

	if h.redis != nil {
		if err := h.redis.Client().Ping(r.Context()).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			overallStatus = "not ready"
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	enabled := 0
	for _, src := range h.reputation.Sources() {
		if src.IsEnabled() {
			enabled++
		}
	}
	if enabled > 0 {
		checks["reputation"] = "healthy"
	} else {
		// No sources is degraded but still serviceable: local analysis works.
		checks["reputation"] = "no sources enabled"
	}

	response := HealthResponse{
		Status:    overallStatus,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
