// Package scoring parses submitted scores and aggregates received scores.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/peereval/internal/domain/model"
)

// Score bounds, inclusive.
const (
	MinScore = 0.0
	MaxScore = 20.0
)

// Placeholder is how a missing average is rendered.
const Placeholder = "-"

// Sentinel kinds for scoring errors.
var (
	ErrEmptyScore   = errors.New("empty score")
	ErrInvalidScore = errors.New("invalid score")
)

// ParseScore parses text as a real number in [MinScore, MaxScore].
// A single decimal comma is accepted ("12,5").
func ParseScore(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, ErrEmptyScore
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidScore, text)
	}
	if err := CheckRange(v); err != nil {
		return 0, err
	}
	return v, nil
}

// CheckRange rejects scores outside [MinScore, MaxScore].
func CheckRange(v float64) error {
	if math.IsNaN(v) || v < MinScore || v > MaxScore {
		return fmt.Errorf("%w: %v outside [%v, %v]", ErrInvalidScore, v, MinScore, MaxScore)
	}
	return nil
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AverageScore returns the mean score received by name across all records,
// rounded to two decimals. The boolean is false when name has no records.
func AverageScore(records []model.Record, name string) (float64, bool) {
	var sum float64
	var n int
	for _, r := range records {
		if r.Evaluated != name || r.Unscored {
			continue
		}
		sum += r.Score
		n++
	}
	if n == 0 {
		return 0, false
	}
	return Round2(sum / float64(n)), true
}

// MemberAverage is one row of the averages table.
type MemberAverage struct {
	Member  model.Member
	Average float64
	Count   int
	Valid   bool // false when the member has received no scores
}

// Display renders the average with two decimals, or Placeholder.
func (a MemberAverage) Display() string {
	if !a.Valid {
		return Placeholder
	}
	return strconv.FormatFloat(a.Average, 'f', 2, 64)
}

// Averages computes the averages table for every member, in roster order.
func Averages(members []model.Member, records []model.Record) []MemberAverage {
	sums := make(map[string]float64, len(members))
	counts := make(map[string]int, len(members))
	for _, r := range records {
		if r.Unscored {
			continue
		}
		sums[r.Evaluated] += r.Score
		counts[r.Evaluated]++
	}
	out := make([]MemberAverage, len(members))
	for i, m := range members {
		row := MemberAverage{Member: m, Count: counts[m.Name]}
		if row.Count > 0 {
			row.Average = Round2(sums[m.Name] / float64(row.Count))
			row.Valid = true
		}
		out[i] = row
	}
	return out
}
