package mispron

// DetectedBy records which detection pass produced a pattern.
type DetectedBy string

const (
	// ByPhonemePass means the pattern was found by scanning N-best phoneme
	// candidates against the acceptability rules.
	ByPhonemePass DetectedBy = "phoneme-pass"

	// ByTextPass means the pattern was found by matching the recognized
	// transcript against known phonetically-spelled substitutions.
	ByTextPass DetectedBy = "text-pass"

	// ByBothPasses means both passes independently found the same
	// (pattern, word) pair.
	ByBothPasses DetectedBy = "both"
)

// Pattern is one detected accent-interference pattern on a specific word.
// Identity is the (Name, Word) pair; the merge step collapses duplicates
// across passes into a single record tagged [ByBothPasses].
type Pattern struct {
	Name       string
	Word       string
	Hint       string
	DetectedBy DetectedBy
}

// ScoredWord pairs a word with its recognizer accuracy score.
type ScoredWord struct {
	Word  string
	Score float64
}

// Report is the merged phonetic insight for one utterance. It is built
// fresh per utterance and never mutated after being returned.
//
// Callers receive a nil *Report — not an empty one — when no critical
// error, minor error, or pattern was detected, so absence is a cheap nil
// check downstream.
type Report struct {
	// CriticalErrors lists words whose accuracy fell below the critical
	// threshold.
	CriticalErrors []ScoredWord

	// MinorErrors lists words between the critical and soft thresholds,
	// plus text-pass hits that have word-level evidence.
	MinorErrors []ScoredWord

	// Patterns lists detected interference patterns, deduplicated by
	// (Name, Word).
	Patterns []Pattern

	// OmittedWords lists reference words the speaker skipped. Omissions
	// never contribute to phoneme-level scans and do not, on their own,
	// make a report non-nil.
	OmittedWords []string
}

// empty reports whether the report carries no critical error, minor
// error, or pattern.
func (r *Report) empty() bool {
	return len(r.CriticalErrors) == 0 && len(r.MinorErrors) == 0 && len(r.Patterns) == 0
}
