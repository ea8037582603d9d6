// Package evalctl implements the command-line client for the peer evaluation API.
package evalctl

import "time"

// Config holds client settings shared by every subcommand.
type Config struct {
	BaseURL string        // Base URL of the service
	Timeout time.Duration // HTTP request timeout
	JSON    bool          // Print raw JSON instead of tables
	Verbose bool          // Log each request
}

// Member is a roster entry as returned by the API.
type Member struct {
	Number string `json:"number,omitempty"`
	Name   string `json:"name"`
	Track  string `json:"track"`
	Label  string `json:"label,omitempty"`
}

// Assignment is the answer to GET /next.
type Assignment struct {
	Week      int      `json:"week"`
	OddWeek   bool     `json:"odd_week"`
	Evaluator string   `json:"evaluator"`
	Next      *Member  `json:"next"`
	Remaining []Member `json:"remaining"`
	Stale     bool     `json:"stale"`
}

// Evaluation is the body of POST /evaluations.
type Evaluation struct {
	Week         int    `json:"week"`
	Evaluator    string `json:"evaluator"`
	Score        string `json:"score"`
	SubmissionID string `json:"submission_id,omitempty"`
}

// Ack is the answer to POST /evaluations.
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

// Average is one averages row.
type Average struct {
	Name    string   `json:"name"`
	Track   string   `json:"track"`
	Average *float64 `json:"average"`
	Display string   `json:"display"`
	Count   int      `json:"count"`
}

// SnapshotInfo is the answer to GET /snapshot and POST /refresh.
type SnapshotInfo struct {
	Members     int       `json:"members"`
	Records     int       `json:"records"`
	LoadedAt    time.Time `json:"loaded_at"`
	Stale       bool      `json:"stale"`
	LastError   string    `json:"last_error,omitempty"`
	LastAttempt time.Time `json:"last_attempt"`
}
