// Package submission validates an evaluation before it is appended to the store.
package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/peereval/internal/domain/model"
	"github.com/okian/peereval/internal/domain/rotation"
	"github.com/okian/peereval/internal/domain/scoring"
)

// ScoreText is the score exactly as typed. It decodes from either a JSON
// string or a JSON number so clients may send 12.5 or "12,5".
type ScoreText string

// UnmarshalJSON implements json.Unmarshaler.
func (s *ScoreText) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = ScoreText(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("score must be a string or number: %w", err)
	}
	*s = ScoreText(n.String())
	return nil
}

// Request is a submission as received from a client.
type Request struct {
	Week         int       `json:"week"`
	Evaluator    string    `json:"evaluator"`
	Score        ScoreText `json:"score"`
	SubmissionID string    `json:"submission_id,omitempty"`
}

// Validated is a request resolved against a snapshot, ready to append.
type Validated struct {
	Week      int
	Evaluator model.Member
	Target    model.Member
	Score     float64
}

// Record converts v to the row appended to the store.
func (v Validated) Record() model.Record {
	return model.Record{
		Week:      v.Week,
		Evaluator: v.Evaluator.Name,
		Evaluated: v.Target.Name,
		Score:     v.Score,
	}
}

// CheckWeek rejects weeks outside [1, maxWeek]. maxWeek <= 0 disables the
// upper bound.
func CheckWeek(week, maxWeek int) error {
	if week < 1 || (maxWeek > 0 && week > maxWeek) {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidWeek, week, maxWeek)
	}
	return nil
}

// ResolveEvaluator finds name on the roster, or returns an
// *UnknownMemberError carrying a suggestion.
func ResolveEvaluator(snap model.Snapshot, name string) (model.Member, error) {
	m, ok := snap.Member(name)
	if !ok {
		return model.Member{}, &UnknownMemberError{Name: name, Suggestion: Suggest(name, snap.Names())}
	}
	return m, nil
}

// Validate checks req against snap and picks the target with the rotation
// selector. Missing fields are reported before the score is parsed.
func Validate(snap model.Snapshot, req Request, maxWeek int) (Validated, error) {
	evaluator := strings.TrimSpace(req.Evaluator)
	if evaluator == "" {
		return Validated{}, fmt.Errorf("%w: evaluator not set", ErrMissingSelection)
	}
	if strings.TrimSpace(string(req.Score)) == "" {
		return Validated{}, fmt.Errorf("%w: score not set", ErrMissingSelection)
	}
	if err := CheckWeek(req.Week, maxWeek); err != nil {
		return Validated{}, err
	}
	ev, err := ResolveEvaluator(snap, evaluator)
	if err != nil {
		return Validated{}, err
	}
	target, ok := rotation.SelectNext(snap.Members, snap.Records, req.Week, ev.Name)
	if !ok {
		return Validated{}, fmt.Errorf("%w: no one left for %s to evaluate in week %d", ErrMissingSelection, ev.Name, req.Week)
	}
	score, err := scoring.ParseScore(string(req.Score))
	if err != nil {
		if errors.Is(err, scoring.ErrEmptyScore) {
			return Validated{}, fmt.Errorf("%w: score not set", ErrMissingSelection)
		}
		return Validated{}, err
	}
	return Validated{Week: req.Week, Evaluator: ev, Target: target, Score: score}, nil
}
