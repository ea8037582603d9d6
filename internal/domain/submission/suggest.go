package submission

import (
	"github.com/agnivade/levenshtein"

	"github.com/okian/peereval/internal/domain/model"
)

// Suggest returns the candidate closest to name, or "" when none is within
// a third of name's length (at least two edits).
func Suggest(name string, candidates []string) string {
	target := model.FoldLabel(name)
	if target == "" {
		return ""
	}
	limit := max(2, len([]rune(target))/3)

	best, bestDist := "", limit+1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(target, model.FoldLabel(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
