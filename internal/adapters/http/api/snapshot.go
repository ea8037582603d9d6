package api

import (
	"context"
	"net/http"
)

// SnapshotDependencies defines the interface for snapshot state and reloads.
type SnapshotDependencies interface {
	SnapshotInfo() SnapshotInfo
	Refresh(ctx context.Context) (SnapshotInfo, error)
}

// SnapshotHandler handles snapshot inspection and refresh requests.
type SnapshotHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps SnapshotDependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

// HandleGetSnapshot handles GET /snapshot requests.
func (h *SnapshotHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.SnapshotInfo())
}

// HandlePostRefresh handles POST /refresh requests.
func (h *SnapshotHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	info, err := h.deps.Refresh(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
