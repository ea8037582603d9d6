// Package types contains the read shapes returned by the service and API.
package types

import (
	"time"

	"github.com/okian/peereval/internal/domain/model"
	"github.com/okian/peereval/internal/domain/scoring"
)

// Member is the public view of a roster entry.
type Member struct {
	Number string `json:"number,omitempty"`
	Name   string `json:"name"`
	Track  string `json:"track"`
	Label  string `json:"label,omitempty"`
}

// FromMember converts a domain member.
func FromMember(m model.Member) Member {
	return Member{Number: m.Number, Name: m.Name, Track: m.Track.String(), Label: m.Label}
}

// FromMembers converts a roster slice, preserving order.
func FromMembers(ms []model.Member) []Member {
	out := make([]Member, len(ms))
	for i, m := range ms {
		out[i] = FromMember(m)
	}
	return out
}

// Assignment answers "who does this evaluator score next this week".
type Assignment struct {
	Week      int      `json:"week"`
	OddWeek   bool     `json:"odd_week"`
	Evaluator string   `json:"evaluator"`
	Next      *Member  `json:"next"`
	Remaining []Member `json:"remaining"`
	Stale     bool     `json:"stale"`
}

// Ack confirms an appended evaluation.
type Ack struct {
	SubmissionID string    `json:"submission_id"`
	Week         int       `json:"week"`
	Evaluator    string    `json:"evaluator"`
	Evaluated    string    `json:"evaluated"`
	Score        float64   `json:"score"`
	RecordedAt   time.Time `json:"recorded_at"`
	Duplicate    bool      `json:"duplicate"`
	Stale        bool      `json:"stale"`
	Next         *Member   `json:"next"`
}

// Average is one row of the averages table. Average is nil when the member
// has received no scores; Display then holds the placeholder.
type Average struct {
	Name    string   `json:"name"`
	Track   string   `json:"track"`
	Average *float64 `json:"average"`
	Display string   `json:"display"`
	Count   int      `json:"count"`
}

// FromAverage converts a scoring row.
func FromAverage(a scoring.MemberAverage) Average {
	out := Average{
		Name:    a.Member.Name,
		Track:   a.Member.Track.String(),
		Display: a.Display(),
		Count:   a.Count,
	}
	if a.Valid {
		v := a.Average
		out.Average = &v
	}
	return out
}

// SnapshotInfo describes the snapshot currently being served.
type SnapshotInfo struct {
	Members     int       `json:"members"`
	Records     int       `json:"records"`
	LoadedAt    time.Time `json:"loaded_at"`
	Stale       bool      `json:"stale"`
	LastError   string    `json:"last_error,omitempty"`
	LastAttempt time.Time `json:"last_attempt"`
}
