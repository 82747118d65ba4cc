// Package mispron implements the dual-pass mispronunciation detector.
//
// The phoneme pass inspects the recognizer's word and phoneme evidence,
// scanning every N-best candidate for each phoneme slot against the
// acceptability rules in [phoneme.Ruleset]. Scanning the full candidate
// list — not just the top hypothesis — is the core of the design: a
// recognizer that "corrects" an accented substitution toward the expected
// sound still leaks the substitution at a lower rank.
//
// The text pass catches the opposite failure mode, where the recognizer
// commits to the substitution and writes the misheard word into the
// transcript ("vater" for "water"). It matches the transcript against a
// dictionary of phonetically-spelled substitutions, exactly and by
// Jaro-Winkler similarity.
//
// Both passes are pure functions of their inputs and run sequentially;
// their outputs are merged and deduplicated into a single [Report].
package mispron

import (
	"sort"
	"strings"

	"github.com/SwarupShekhar/ENGAPP/internal/phoneme"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

const (
	// defaultCriticalThreshold is the word accuracy below which an error
	// blocks intelligibility.
	defaultCriticalThreshold = 60

	// defaultMinorThreshold is deliberately high: recognizer accuracy
	// scores are computed against the recognizer's own hypothesis and run
	// inflated, so noticeable-but-understandable errors surface well
	// above the intuitive cutoff.
	defaultMinorThreshold = 82
)

// Option configures a [Detector].
type Option func(*Detector)

// WithCriticalThreshold sets the word accuracy below which an error is
// critical. Default: 60.
func WithCriticalThreshold(v float64) Option {
	return func(d *Detector) { d.critical = v }
}

// WithMinorThreshold sets the word accuracy below which an error is at
// least minor. Default: 82.
func WithMinorThreshold(v float64) Option {
	return func(d *Detector) { d.minor = v }
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score for a text-pass
// near-miss match. Default: 0.84.
func WithFuzzyThreshold(v float64) Option {
	return func(d *Detector) { d.fuzzy = v }
}

// Detector runs both detection passes over one utterance's evidence.
// It is read-only after construction and safe for concurrent use.
type Detector struct {
	rules    *phoneme.Ruleset
	subs     []substitution
	critical float64
	minor    float64
	fuzzy    float64
}

// New returns a Detector using the given acceptability rules. A nil
// ruleset gets the default English rules.
func New(rules *phoneme.Ruleset, opts ...Option) *Detector {
	if rules == nil {
		rules = phoneme.NewRuleset()
	}
	d := &Detector{
		rules:    rules,
		subs:     defaultSubstitutions,
		critical: defaultCriticalThreshold,
		minor:    defaultMinorThreshold,
		fuzzy:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Detect runs the phoneme pass and the text pass over one utterance and
// merges their findings. transcript is the recognized text; words is the
// recognizer's word-level evidence for the same utterance.
//
// A nil report means no critical error, minor error, or pattern was
// found. Inputs are not mutated.
func (d *Detector) Detect(transcript string, words []types.WordObservation) *Report {
	r := d.phonemePass(words)
	d.textPass(transcript, words, r)
	d.dedupe(r)
	if r.empty() {
		return nil
	}
	return r
}

// AnnotatedWords returns a deep copy of words with each phoneme's
// Acceptable and HeardAs fields resolved against the rules. Omitted
// words are copied through untouched.
func (d *Detector) AnnotatedWords(words []types.WordObservation) []types.WordObservation {
	out := make([]types.WordObservation, len(words))
	for i, w := range words {
		out[i] = w
		if w.ErrorKind == types.ErrorOmission || len(w.Phonemes) == 0 {
			continue
		}
		out[i].Phonemes = make([]types.PhonemeObservation, len(w.Phonemes))
		for j, ph := range w.Phonemes {
			cp := ph
			cp.Acceptable, cp.HeardAs = d.resolve(ph)
			out[i].Phonemes[j] = cp
		}
	}
	return out
}

// resolve classifies one phoneme observation. Acceptability is judged on
// the top candidate only; heardAs carries the first candidate, in rank
// order, matching a named pattern — even when the top candidate agrees
// with the expected symbol, since recognizers auto-correct the top guess
// toward the reference while the true acoustic alternative survives lower
// in the list. With no pattern match, an unacceptable top candidate is
// reported as heard.
func (d *Detector) resolve(ph types.PhonemeObservation) (acceptable bool, heardAs string) {
	if len(ph.Candidates) == 0 {
		return true, ""
	}
	cands := rankOrdered(ph.Candidates)
	acceptable = d.rules.IsAcceptable(ph.Expected, cands[0].Symbol)
	for _, c := range cands {
		if _, ok := d.rules.Lookup(ph.Expected, c.Symbol); ok {
			return acceptable, c.Symbol
		}
	}
	if acceptable {
		return true, ""
	}
	return false, cands[0].Symbol
}

// phonemePass builds the initial report from word and phoneme evidence.
func (d *Detector) phonemePass(words []types.WordObservation) *Report {
	r := &Report{}
	for _, w := range words {
		if w.ErrorKind == types.ErrorOmission {
			r.OmittedWords = append(r.OmittedWords, w.Text)
			continue
		}
		if w.ErrorKind == types.ErrorInsertion {
			continue
		}

		switch {
		case w.AccuracyScore < d.critical:
			r.CriticalErrors = append(r.CriticalErrors, ScoredWord{Word: w.Text, Score: w.AccuracyScore})
		case w.AccuracyScore < d.minor:
			r.MinorErrors = append(r.MinorErrors, ScoredWord{Word: w.Text, Score: w.AccuracyScore})
		}

		for _, ph := range w.Phonemes {
			for _, c := range rankOrdered(ph.Candidates) {
				if p, ok := d.rules.Lookup(ph.Expected, c.Symbol); ok {
					r.Patterns = append(r.Patterns, Pattern{
						Name:       p.Name,
						Word:       w.Text,
						Hint:       p.Hint,
						DetectedBy: ByPhonemePass,
					})
					break
				}
			}
		}
	}
	return r
}

// dedupe collapses duplicate patterns by (Name, Word) and duplicate
// error entries by word, keeping first occurrences. A pattern seen by
// both passes is retagged [ByBothPasses].
func (d *Detector) dedupe(r *Report) {
	type patternKey struct{ name, word string }
	byKey := make(map[patternKey]int, len(r.Patterns))
	kept := r.Patterns[:0]
	for _, p := range r.Patterns {
		k := patternKey{p.Name, strings.ToLower(p.Word)}
		if i, ok := byKey[k]; ok {
			if kept[i].DetectedBy != p.DetectedBy {
				kept[i].DetectedBy = ByBothPasses
			}
			continue
		}
		byKey[k] = len(kept)
		kept = append(kept, p)
	}
	r.Patterns = kept

	r.CriticalErrors = dedupeScored(r.CriticalErrors, nil)
	seen := make(map[string]struct{}, len(r.CriticalErrors))
	for _, e := range r.CriticalErrors {
		seen[strings.ToLower(e.Word)] = struct{}{}
	}
	// A word already critical must not also appear as minor.
	r.MinorErrors = dedupeScored(r.MinorErrors, seen)
}

func dedupeScored(in []ScoredWord, seen map[string]struct{}) []ScoredWord {
	if seen == nil {
		seen = make(map[string]struct{}, len(in))
	}
	out := in[:0]
	for _, e := range in {
		k := strings.ToLower(e.Word)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}

// rankOrdered returns candidates sorted by ascending rank. The input is
// left untouched; recognizers usually deliver rank order already, in
// which case no copy is made.
func rankOrdered(cands []types.PhonemeCandidate) []types.PhonemeCandidate {
	sorted := true
	for i := 1; i < len(cands); i++ {
		if cands[i].Rank < cands[i-1].Rank {
			sorted = false
			break
		}
	}
	if sorted {
		return cands
	}
	out := make([]types.PhonemeCandidate, len(cands))
	copy(out, cands)
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}
