package api

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/peereval/pkg/metrics"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	snapshot SnapshotDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(snapshot SnapshotDependencies) *HealthHandler {
	return &HealthHandler{snapshot: snapshot}
}

type healthResponse struct {
	Status string `json:"status"`
	Stale  bool   `json:"stale"`
}

// HandleHealth handles GET /healthz requests.
// Clients asking for application/json get a short status document;
// everyone else gets the Prometheus exposition.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		info := h.snapshot.SnapshotInfo()
		status := "ok"
		if info.Stale {
			status = "degraded"
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: status, Stale: info.Stale})
		return
	}
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
