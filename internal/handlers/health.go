package handlers

import (
	"encoding/json"
	"net/http"
)

// HealthChecker reports whether the shared renderer session is alive.
type HealthChecker interface {
	Healthy() bool
}

// HealthHandler handles liveness checks
type HealthHandler struct {
	renderer HealthChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(renderer HealthChecker) *HealthHandler {
	return &HealthHandler{renderer: renderer}
}

// Check handles GET /healthz
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":   "ok",
		"renderer": h.renderer.Healthy(),
	}
	code := http.StatusOK
	if !h.renderer.Healthy() {
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
