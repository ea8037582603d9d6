// Package model contains the roster and evaluation history shared between layers.
package model

import "time"

// Member is one person on the roster.
type Member struct {
	Number string // roster number as written in the sheet; may be empty
	Name   string // unique display name, used as the member key
	Track  Track
	Label  string // raw course label from the store, e.g. "Automação"
}

// Record is one appended evaluation.
type Record struct {
	Week      int
	Evaluator string
	Evaluated string
	Score     float64
	// Unscored marks a row whose score cell could not be used. It still
	// counts as done for rotation but is left out of averages.
	Unscored bool
}

// Snapshot is a full copy of the remote store taken in one read.
// It is replaced wholesale on every reload and never patched.
type Snapshot struct {
	Members  []Member
	Records  []Record
	LoadedAt time.Time
}

// Member returns the first roster entry called name.
func (s Snapshot) Member(name string) (Member, bool) {
	return FindMember(s.Members, name)
}

// Names lists member names in roster order.
func (s Snapshot) Names() []string {
	names := make([]string, len(s.Members))
	for i, m := range s.Members {
		names[i] = m.Name
	}
	return names
}

// FindMember returns the first member called name.
func FindMember(members []Member, name string) (Member, bool) {
	for _, m := range members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}
