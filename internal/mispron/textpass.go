package mispron

import (
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/SwarupShekhar/ENGAPP/internal/phoneme"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// defaultFuzzyThreshold is the minimum Jaro-Winkler similarity between a
// transcript token and a known misspelling for a near-miss match.
const defaultFuzzyThreshold = 0.84

// substitution is one known phonetically-spelled transcription of a
// mispronounced word, mapped to the interference pattern it betrays.
type substitution struct {
	misspelling string
	correct     string
	pattern     string
	hint        string

	// wholeWord restricts matching to full tokens. Short entries like
	// "dis" would otherwise fire inside innocent words ("distance").
	wholeWord bool
}

// defaultSubstitutions lists transcript spellings a recognizer commits to
// when it fully believes an accented substitution.
var defaultSubstitutions = []substitution{
	{misspelling: "vater", correct: "water", pattern: "v_w_confusion", hint: phoneme.HintVW},
	{misspelling: "wery", correct: "very", pattern: "v_w_confusion", hint: phoneme.HintVW},
	{misspelling: "vant", correct: "want", pattern: "v_w_confusion", hint: phoneme.HintVW, wholeWord: true},
	{misspelling: "dis", correct: "this", pattern: "th_stopping", hint: phoneme.HintTH, wholeWord: true},
	{misspelling: "dat", correct: "that", pattern: "th_stopping", hint: phoneme.HintTH, wholeWord: true},
	{misspelling: "dey", correct: "they", pattern: "th_stopping", hint: phoneme.HintTH, wholeWord: true},
	{misspelling: "tink", correct: "think", pattern: "th_stopping", hint: phoneme.HintTH},
	{misspelling: "tree", correct: "three", pattern: "th_stopping", hint: phoneme.HintTH, wholeWord: true},
	{misspelling: "zis", correct: "this", pattern: "th_fronting", hint: phoneme.HintTH, wholeWord: true},
	{misspelling: "sink", correct: "think", pattern: "th_fronting", hint: phoneme.HintTH, wholeWord: true},
	{misspelling: "bery", correct: "very", pattern: "b_v_confusion", hint: phoneme.HintBV},
	{misspelling: "berry", correct: "very", pattern: "b_v_confusion", hint: phoneme.HintBV, wholeWord: true},
	{misspelling: "jero", correct: "zero", pattern: "j_z_confusion", hint: "'j' starts with a complete closure like 'd', then releases into 'zh'. 'z' never closes fully."},
	{misspelling: "iskool", correct: "school", pattern: "initial_cluster_epenthesis", hint: "Start the 's' directly, without a helper vowel before it: 'school', not 'iskool'."},
	{misspelling: "istop", correct: "stop", pattern: "initial_cluster_epenthesis", hint: "Start the 's' directly, without a helper vowel before it: 'school', not 'iskool'."},
}

// textPass scans the recognized transcript for dictionary hits and
// appends its findings to r. Each hit yields a pattern on the intended
// word; when the misheard token has word-level evidence, the token is
// also recorded as a minor error with its recognizer score.
func (d *Detector) textPass(transcript string, words []types.WordObservation, r *Report) {
	tokens := strings.Fields(strings.ToLower(transcript))
	if len(tokens) == 0 {
		return
	}

	scores := make(map[string]float64, len(words))
	for _, w := range words {
		if w.ErrorKind != types.ErrorOmission {
			scores[strings.ToLower(w.Text)] = w.AccuracyScore
		}
	}

	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?;:'\"")
		if tok == "" {
			continue
		}
		for _, s := range d.subs {
			if tok == s.correct {
				continue
			}
			if !d.matchesSubstitution(tok, s) {
				continue
			}
			r.Patterns = append(r.Patterns, Pattern{
				Name:       s.pattern,
				Word:       s.correct,
				Hint:       s.hint,
				DetectedBy: ByTextPass,
			})
			if score, ok := scores[tok]; ok {
				r.MinorErrors = append(r.MinorErrors, ScoredWord{Word: tok, Score: score})
			}
			break
		}
	}
}

func (d *Detector) matchesSubstitution(tok string, s substitution) bool {
	if tok == s.misspelling {
		return true
	}
	if s.wholeWord {
		return false
	}
	if strings.Contains(tok, s.misspelling) {
		return true
	}
	return matchr.JaroWinkler(tok, s.misspelling, false) >= d.fuzzy
}
