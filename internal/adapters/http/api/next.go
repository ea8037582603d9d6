package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// NextDependencies defines the interface for assignment lookups.
type NextDependencies interface {
	Next(ctx context.Context, week int, evaluator string) (Assignment, error)
}

// NextHandler handles assignment requests.
type NextHandler struct {
	deps NextDependencies
}

// NewNextHandler creates a new next handler.
func NewNextHandler(deps NextDependencies) *NextHandler {
	return &NextHandler{deps: deps}
}

// HandleGetNext handles GET /next?week=W&evaluator=NAME requests.
func (h *NextHandler) HandleGetNext(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_next"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	week, err := strconv.Atoi(strings.TrimSpace(q.Get("week")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	a, err := h.deps.Next(r.Context(), week, q.Get("evaluator"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
