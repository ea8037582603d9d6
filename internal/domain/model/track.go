package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Track is the course category that governs pairing eligibility.
type Track string

// Known tracks. Any unrecognised label resolves to TrackUnknown.
const (
	TrackEnergy     Track = "energy"
	TrackAutomation Track = "automation"
	TrackShared     Track = "shared"
	TrackUnknown    Track = "unknown"
)

// trackAliases maps folded labels, as they appear in the roster sheet or in
// config, to tracks.
var trackAliases = map[string]Track{
	"energia":         TrackEnergy,
	"energy":          TrackEnergy,
	"energytrack":     TrackEnergy,
	"automacao":       TrackAutomation,
	"automation":      TrackAutomation,
	"automationtrack": TrackAutomation,
	"tec":             TrackShared,
	"shared":          TrackShared,
	"sharedtrack":     TrackShared,
}

// ParseTrack resolves a roster label such as "Automação" or "TEC".
// Matching ignores case, accents and surrounding whitespace.
func ParseTrack(label string) Track {
	if t, ok := trackAliases[FoldLabel(label)]; ok {
		return t
	}
	return TrackUnknown
}

// FoldLabel strips diacritics, spaces and case from s.
func FoldLabel(s string) string {
	// Transformers and casers are stateful; build them per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripMarks, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	out = strings.Join(strings.Fields(out), "")
	return cases.Fold().String(out)
}

// Valid reports whether t is one of the three pairing tracks.
func (t Track) Valid() bool {
	switch t {
	case TrackEnergy, TrackAutomation, TrackShared:
		return true
	}
	return false
}

func (t Track) String() string { return string(t) }
