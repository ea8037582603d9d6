package api

import (
	"net/http"
	"strings"
)

// AveragesDependencies defines the interface for score averages.
type AveragesDependencies interface {
	Averages() []Average
	Average(name string) (Average, error)
}

// AveragesHandler handles averages requests.
type AveragesHandler struct {
	deps AveragesDependencies
}

// NewAveragesHandler creates a new averages handler.
func NewAveragesHandler(deps AveragesDependencies) *AveragesHandler {
	return &AveragesHandler{deps: deps}
}

// HandleGetAverages handles GET /averages requests.
func (h *AveragesHandler) HandleGetAverages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Averages())
}

// HandleGetAverage handles GET /averages/{name} requests.
func (h *AveragesHandler) HandleGetAverage(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_average"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/averages/")
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	avg, err := h.deps.Average(name)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, avg)
}
