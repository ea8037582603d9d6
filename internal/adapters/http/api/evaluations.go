package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/peereval/internal/domain/submission"
)

const maxEvaluationBody = 64 << 10

// EvaluationsDependencies defines the interface for recording evaluations.
type EvaluationsDependencies interface {
	Submit(ctx context.Context, req submission.Request) (Ack, error)
}

// EvaluationsHandler handles evaluation submissions.
type EvaluationsHandler struct {
	deps EvaluationsDependencies
}

// NewEvaluationsHandler creates a new evaluations handler.
func NewEvaluationsHandler(deps EvaluationsDependencies) *EvaluationsHandler {
	return &EvaluationsHandler{deps: deps}
}

// HandlePostEvaluation handles POST /evaluations requests.
// A replayed submission_id answers 200 with the original ack; a new one 201.
func (h *EvaluationsHandler) HandlePostEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req submission.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEvaluationBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ack, err := h.deps.Submit(r.Context(), req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	status := http.StatusCreated
	if ack.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, ack)
}
