package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/peereval/internal/adapters/repository"
	"github.com/okian/peereval/internal/domain/submission"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

// opError tags an error with the handler operation and an optional kind.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.kind != nil && e.err != nil:
		return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
	case e.kind != nil:
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	default:
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// WrapKind wraps err as kind, raised by op.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// classify maps an error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, submission.ErrMissingSelection):
		return http.StatusBadRequest, "missing_selection"
	case errors.Is(err, submission.ErrInvalidScore):
		return http.StatusBadRequest, "invalid_score"
	case errors.Is(err, submission.ErrInvalidWeek):
		return http.StatusBadRequest, "invalid_week"
	case errors.Is(err, submission.ErrUnknownMember):
		return http.StatusNotFound, "unknown_member"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, submission.ErrStoreUnavailable):
		return http.StatusBadGateway, "store_unavailable"
	case errors.Is(err, repository.ErrDecode):
		return http.StatusBadGateway, "store_decode"
	case errors.Is(err, repository.ErrTransport):
		return http.StatusBadGateway, "store_transport"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeDomainError writes err with the status classify picks for it.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	resp := errorResponse{Code: code, Message: Wrap(op, err).Error()}
	var unknown *submission.UnknownMemberError
	if errors.As(err, &unknown) {
		resp.Suggestion = unknown.Suggestion
	}
	writeJSON(w, status, resp)
}
