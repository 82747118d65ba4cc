// Package cefr provides a rule-based baseline CEFR estimate from surface
// features of a transcript, independent of the LLM-backed analyzers. The
// orchestrator uses it as an anchor that the synthesized overall score
// can refine but not invent from nothing.
package cefr

import (
	"regexp"
	"strings"

	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// minTokens is the sample size below which the classifier refuses to
// estimate and returns the lowest band: insufficient evidence must give
// a conservative answer, never an inflated one.
const minTokens = 5

// Cutoffs are the upper score bounds per band, A1 through C1; anything
// above the last cutoff is C2.
type Cutoffs [5]float64

// DefaultCutoffs are the calibrated band boundaries.
var DefaultCutoffs = Cutoffs{30, 45, 60, 75, 90}

// Estimate is a baseline CEFR assessment.
type Estimate struct {
	Level types.CEFRLevel

	// Score is the raw formula output, capped at 100.
	Score float64
}

var (
	wordPattern     = regexp.MustCompile(`[a-zA-Z']+`)
	sentencePattern = regexp.MustCompile(`[.!?]+`)
)

// Classifier buckets transcripts into CEFR bands. The zero value uses
// the default cutoffs.
type Classifier struct {
	cutoffs Cutoffs
}

// New returns a Classifier with the given band cutoffs.
func New(cutoffs Cutoffs) *Classifier {
	return &Classifier{cutoffs: cutoffs}
}

// Classify scores the transcript with a fixed linear combination of
// type-token ratio and mean sentence length, then buckets the score.
// The classifier is deterministic: the same transcript always yields
// the same estimate.
func (c *Classifier) Classify(transcript string) Estimate {
	cutoffs := c.cutoffs
	if cutoffs == (Cutoffs{}) {
		cutoffs = DefaultCutoffs
	}

	tokens := words(transcript)
	if len(tokens) < minTokens {
		return Estimate{Level: types.CEFRA1, Score: 10}
	}

	score := lexicalDiversity(tokens)*200 + meanSentenceLength(transcript, len(tokens))*2

	level := types.CEFRC2
	for i, cutoff := range cutoffs {
		if score <= cutoff {
			level = types.Levels[i]
			break
		}
	}
	return Estimate{Level: level, Score: min(score, 100)}
}

// LevelForScore buckets an arbitrary 0–100 score into a CEFR band using
// the classifier's cutoffs. The orchestrator uses it to refine the
// baseline estimate with the synthesized overall score.
func (c *Classifier) LevelForScore(score float64) types.CEFRLevel {
	cutoffs := c.cutoffs
	if cutoffs == (Cutoffs{}) {
		cutoffs = DefaultCutoffs
	}
	for i, cutoff := range cutoffs {
		if score <= cutoff {
			return types.Levels[i]
		}
	}
	return types.CEFRC2
}

// lexicalDiversity is the plain type-token ratio. TTR drifts with text
// length, which is acceptable here: this classifier is a coarse anchor,
// and the vocabulary analyzer carries the length-robust measure.
func lexicalDiversity(tokens []string) float64 {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return float64(len(set)) / float64(len(tokens))
}

func meanSentenceLength(transcript string, tokenCount int) float64 {
	sentences := 0
	for _, s := range sentencePattern.Split(transcript, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}
	return float64(tokenCount) / float64(sentences)
}

func words(transcript string) []string {
	return wordPattern.FindAllString(strings.ToLower(transcript), -1)
}
