package submission

import (
	"errors"
	"fmt"

	"github.com/okian/peereval/internal/domain/scoring"
)

// Sentinel kinds for submission errors. They allow errors.Is from callers.
var (
	ErrMissingSelection = errors.New("missing selection")
	ErrInvalidScore     = scoring.ErrInvalidScore
	ErrInvalidWeek      = errors.New("invalid week")
	ErrUnknownMember    = errors.New("unknown member")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// UnknownMemberError names a member that is not on the roster, plus the
// closest roster name when one is near enough.
type UnknownMemberError struct {
	Name       string
	Suggestion string
}

func (e *UnknownMemberError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %q (did you mean %q?)", ErrUnknownMember, e.Name, e.Suggestion)
	}
	return fmt.Sprintf("%s: %q", ErrUnknownMember, e.Name)
}

// Is matches ErrUnknownMember.
func (e *UnknownMemberError) Is(target error) bool {
	return target == ErrUnknownMember
}
