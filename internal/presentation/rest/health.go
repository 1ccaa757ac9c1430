// Package rest serves the operational HTTP endpoints of the risk service.
package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/port"
)

const serviceName = "creditrisk"

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ArtifactState reports on the classifier artifact.
type ArtifactState interface {
	Loaded() bool
	Current(ctx context.Context) (port.ModelArtifact, error)
}

// HealthHandler provides HTTP health check endpoints for the risk service.
type HealthHandler struct {
	db        Pinger
	artifacts ArtifactState
	logger    *slog.Logger
	startTime time.Time
	timeout   time.Duration
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(db Pinger, artifacts ArtifactState, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		artifacts: artifacts,
		logger:    logger,
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Checks  map[string]string `json:"checks"`
	Status  string            `json:"status"`
	Service string            `json:"service"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz reports ready only when the database answers and a classifier
// artifact is loaded. The first readiness check loads the artifact if nothing has yet.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := map[string]string{"database": "ok", "artifact": "ok"}
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("readiness: database unavailable", "error", err)
		checks["database"] = "unavailable"
		ready = false
	}
	if !h.artifacts.Loaded() {
		if _, err := h.artifacts.Current(ctx); err != nil {
			h.logger.Warn("readiness: artifact unavailable", "error", err)
			checks["artifact"] = "unavailable"
			ready = false
		}
	}

	resp := ReadinessResponse{Status: "ready", Service: serviceName, Checks: checks}
	code := http.StatusOK
	if !ready {
		resp.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// NewMux builds the HTTP routes: health checks plus metrics when provided.
func NewMux(health *HealthHandler, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	health.RegisterRoutes(mux)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
