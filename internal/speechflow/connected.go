// Package speechflow scores the temporal texture of speech: connected
// speech features (linking, reduction, stress timing) from phoneme and
// word timing data, and an overall fluency recalibration that blends
// those features with flow, prosody, and pace control.
//
// Recognizer-reported fluency and prosody scores run generous,
// especially under self-referenced assessment. The analyzers here pull
// them back toward what a human rater would say, using the timing
// evidence the recognizer also supplies but does not itself score.
package speechflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// Connected-speech scoring constants. Defaults of 70 (linking,
// reduction) and 50 (stress) apply when the sample offers no
// opportunity for the feature: absence of opportunity is not evidence
// of poor performance and must never score zero.
const (
	defaultNoLinkingScore   = 70
	defaultNoReductionScore = 70
	defaultNoStressScore    = 50

	// maxLinkGap is the largest inter-word silence that still counts as
	// a linked boundary.
	maxLinkGap = 30 * time.Millisecond

	// maxLinkedPhoneme is the boundary-phoneme duration below which the
	// phoneme counts as shortened for linking.
	maxLinkedPhoneme = 60 * time.Millisecond

	// reductionPerWord is the per-word duration budget under which a
	// reducible phrase counts as reduced.
	reductionPerWord = 150 * time.Millisecond

	// stressWordMin is the word duration above which a word likely
	// carries a stressed syllable.
	stressWordMin = 250 * time.Millisecond
)

// Connected-speech composite weights.
const (
	linkingWeight   = 0.40
	reductionWeight = 0.30
	stressWeight    = 0.30
)

// reduciblePhrases maps phrase patterns to their reduced spoken form.
var reduciblePhrases = map[string]string{
	"going to":    "gonna",
	"want to":     "wanna",
	"have to":     "hafta",
	"got to":      "gotta",
	"going to be": "gonna be",
}

// vowelSymbols is the set of phoneme symbols treated as vowels for
// linkability checks.
var vowelSymbols = map[string]struct{}{
	"a": {}, "e": {}, "i": {}, "o": {}, "u": {},
	"æ": {}, "ɑ": {}, "ɔ": {}, "ə": {}, "ɛ": {},
	"ɪ": {}, "ʊ": {}, "ʌ": {},
	"aʊ": {}, "aɪ": {}, "ɔɪ": {}, "eɪ": {}, "oʊ": {},
	"iː": {}, "uː": {},
}

// intrusionPairs lists vowel-vowel boundaries that link through an
// intrusive glide ("see a" with /j/, "do it" with /w/).
var intrusionPairs = map[[2]string]struct{}{
	{"iː", "ɑ"}: {},
	{"uː", "ɪ"}: {},
}

// ConnectedResult is the connected-speech sub-assessment for one
// utterance. All scores are 0–100.
type ConnectedResult struct {
	Score        float64
	Linking      float64
	Reduction    float64
	StressTiming float64

	// LinkingExamples and ReductionExamples carry up to three detected
	// instances each, for learner-facing display.
	LinkingExamples   []string
	ReductionExamples []string
}

// AnalyzeConnected scores linking, reduction, and stress timing from the
// word/phoneme timing evidence and the transcript, and combines them
// 40/30/30. With no word evidence at all, every sub-score is the neutral
// 50.
func AnalyzeConnected(words []types.WordObservation, transcript string) ConnectedResult {
	if len(words) == 0 {
		return ConnectedResult{Score: 50, Linking: 50, Reduction: 50, StressTiming: 50}
	}

	r := ConnectedResult{}
	r.Linking, r.LinkingExamples = scoreLinking(words)
	r.Reduction, r.ReductionExamples = scoreReduction(words, transcript)
	r.StressTiming = scoreStressTiming(words)
	r.Score = r.Linking*linkingWeight + r.Reduction*reductionWeight + r.StressTiming*stressWeight
	return r
}

// scoreLinking walks adjacent word boundaries. A boundary is an
// opportunity when the final phoneme of the left word and the initial
// phoneme of the right word are linkable; it counts as linked when the
// inter-word gap is small and the boundary phoneme is shortened.
func scoreLinking(words []types.WordObservation) (float64, []string) {
	var opportunities, linked int
	var examples []string

	for i := 0; i < len(words)-1; i++ {
		left, right := words[i], words[i+1]
		if len(left.Phonemes) == 0 || len(right.Phonemes) == 0 {
			continue
		}
		end := left.Phonemes[len(left.Phonemes)-1]
		start := right.Phonemes[0]
		if !linkable(end.Expected, start.Expected) {
			continue
		}
		opportunities++
		gap := start.Offset - (end.Offset + end.Duration)
		if gap < maxLinkGap && end.Duration < maxLinkedPhoneme {
			linked++
			if len(examples) < 3 {
				examples = append(examples, fmt.Sprintf("%s -> %s", left.Text, right.Text))
			}
		}
	}

	if opportunities == 0 {
		return defaultNoLinkingScore, nil
	}
	return float64(linked) / float64(opportunities) * 100, examples
}

// linkable reports whether a word boundary invites linking: a known
// vowel-vowel intrusion pair, or any consonant-final/vowel-initial
// boundary.
func linkable(end, start string) bool {
	if _, ok := intrusionPairs[[2]string{end, start}]; ok {
		return true
	}
	_, endVowel := vowelSymbols[end]
	_, startVowel := vowelSymbols[start]
	return !endVowel && startVowel
}

// scoreReduction finds reducible phrases in the transcript and checks
// whether each was spoken under a length-proportional duration budget.
func scoreReduction(words []types.WordObservation, transcript string) (float64, []string) {
	var opportunities, reduced int
	var examples []string

	tokens := strings.Fields(strings.ToLower(transcript))

	for phrase, spoken := range reduciblePhrases {
		parts := strings.Fields(phrase)
		for i := 0; i+len(parts) <= len(tokens); i++ {
			if !tokensMatch(tokens[i:i+len(parts)], parts) {
				continue
			}
			opportunities++
			if i+len(parts) > len(words) {
				continue
			}
			var combined time.Duration
			for j := range parts {
				combined += words[i+j].Duration
			}
			if combined < time.Duration(len(parts))*reductionPerWord {
				reduced++
				if len(examples) < 3 {
					examples = append(examples, fmt.Sprintf("%s -> %s", phrase, spoken))
				}
			}
		}
	}

	if opportunities == 0 {
		return defaultNoReductionScore, nil
	}
	return float64(reduced) / float64(opportunities) * 100, examples
}

func tokensMatch(got, want []string) bool {
	for i := range want {
		if strings.Trim(got[i], ".,!?;:'\"") != want[i] {
			return false
		}
	}
	return true
}

// scoreStressTiming infers stress-bearing words from duration, measures
// the spread of inter-stress intervals, and maps lower spread to a
// higher score. English is stress-timed: roughly even spacing between
// stressed syllables reads as native-like rhythm.
func scoreStressTiming(words []types.WordObservation) float64 {
	var intervals []float64
	lastStress := time.Duration(-1)

	for _, w := range words {
		if w.Duration <= stressWordMin {
			continue
		}
		if lastStress >= 0 {
			intervals = append(intervals, float64((w.Offset-lastStress).Milliseconds()))
		}
		lastStress = w.Offset
	}

	if len(intervals) == 0 {
		return defaultNoStressScore
	}

	variance, err := stats.PopulationVariance(intervals)
	if err != nil {
		return defaultNoStressScore
	}
	normalized := variance / 1000

	switch {
	case normalized < 0.1:
		return 90
	case normalized < 0.3:
		return 75
	case normalized < 0.6:
		return 60
	default:
		return 45
	}
}
