package history

import "sort"

// trendWindow is how many recent sessions feed the historical side of
// a trend comparison.
const trendWindow = 3

// Trends compares the current session's problem sounds against recent
// history. Sound names are interference pattern names, sorted.
type Trends struct {
	// ImprovingSounds appeared in recent history but not in the
	// current session.
	ImprovingSounds []string

	// PersistentIssues appear both in recent history and in the
	// current session.
	PersistentIssues []string

	// NewIssues appear in the current session only.
	NewIssues []string

	// Sessions is how many historical sessions were compared.
	Sessions int
}

// AnalyzeTrends derives trends from the current session's problem
// sounds and prior records, newest first. Fewer than two historical
// sessions is not enough signal; the zero Trends is returned.
func AnalyzeTrends(current []string, historical []Record) Trends {
	if len(historical) < 2 {
		return Trends{}
	}

	window := historical[:min(trendWindow, len(historical))]
	past := map[string]struct{}{}
	for _, rec := range window {
		for _, s := range rec.ProblemSounds {
			past[s] = struct{}{}
		}
	}
	now := map[string]struct{}{}
	for _, s := range current {
		now[s] = struct{}{}
	}

	t := Trends{Sessions: len(window)}
	for s := range past {
		if _, ok := now[s]; ok {
			t.PersistentIssues = append(t.PersistentIssues, s)
		} else {
			t.ImprovingSounds = append(t.ImprovingSounds, s)
		}
	}
	for s := range now {
		if _, ok := past[s]; !ok {
			t.NewIssues = append(t.NewIssues, s)
		}
	}
	sort.Strings(t.ImprovingSounds)
	sort.Strings(t.PersistentIssues)
	sort.Strings(t.NewIssues)
	return t
}
