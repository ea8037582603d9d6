// Package rotation decides who a member evaluates next in a given week.
//
// Pairing rules, by evaluator track:
//
//	energy     -> energy members, plus shared members in odd weeks
//	automation -> automation members, plus shared members in even weeks
//	shared     -> energy members in odd weeks, automation members otherwise
//	other      -> nobody
//
// Everything here is a pure function of the roster, the history, the week and
// the evaluator. Candidates keep roster order, so results are stable for a
// given roster ordering.
package rotation

import "github.com/okian/peereval/internal/domain/model"

// IsOddWeek reports whether week is odd.
func IsOddWeek(week int) bool {
	return week%2 == 1
}

// Eligible returns every member evaluator may be paired with in week,
// in roster order. The evaluator is never included.
func Eligible(members []model.Member, evaluator model.Member, week int) []model.Member {
	odd := IsOddWeek(week)
	out := make([]model.Member, 0, len(members))
	for _, m := range members {
		if m.Name == evaluator.Name {
			continue
		}
		if pairs(evaluator.Track, m.Track, odd) {
			out = append(out, m)
		}
	}
	return out
}

func pairs(from, to model.Track, odd bool) bool {
	switch from {
	case model.TrackEnergy:
		return to == model.TrackEnergy || (to == model.TrackShared && odd)
	case model.TrackAutomation:
		return to == model.TrackAutomation || (to == model.TrackShared && !odd)
	case model.TrackShared:
		if odd {
			return to == model.TrackEnergy
		}
		return to == model.TrackAutomation
	default:
		return false
	}
}

// Done returns the set of names evaluator already scored in week.
func Done(records []model.Record, evaluator string, week int) map[string]struct{} {
	done := make(map[string]struct{})
	for _, r := range records {
		if r.Evaluator == evaluator && r.Week == week {
			done[r.Evaluated] = struct{}{}
		}
	}
	return done
}

// Pending lists, in roster order, the eligible members evaluatorName has not
// yet scored in week. An empty or unknown evaluator yields nil.
func Pending(members []model.Member, records []model.Record, week int, evaluatorName string) []model.Member {
	if evaluatorName == "" {
		return nil
	}
	evaluator, ok := model.FindMember(members, evaluatorName)
	if !ok {
		return nil
	}
	done := Done(records, evaluatorName, week)
	var out []model.Member
	for _, c := range Eligible(members, evaluator, week) {
		if _, seen := done[c.Name]; !seen {
			out = append(out, c)
		}
	}
	return out
}

// SelectNext returns the first member evaluatorName still has to score in
// week. The boolean is false when nobody is left or the evaluator is unset
// or not on the roster.
func SelectNext(members []model.Member, records []model.Record, week int, evaluatorName string) (model.Member, bool) {
	pending := Pending(members, records, week, evaluatorName)
	if len(pending) == 0 {
		return model.Member{}, false
	}
	return pending[0], true
}
