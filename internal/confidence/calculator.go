// Package confidence derives how much a score deserves to be trusted,
// from audio quality and sample size. Scores themselves never change
// here; the calculator attaches a level and a margin of error so the
// caller can present "B1 ± 4 points" instead of false precision.
package confidence

import (
	"time"

	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// Minimum sample requirements per metric. Pronunciation stabilizes on
// the least material; fluency needs longer stretches of speech; grammar
// and vocabulary need enough words for the text analyzers to see
// structure.
const (
	minPronunciationSample = 30 * time.Second
	minFluencySample       = 45 * time.Second
	minGrammarWords        = 50
)

// shortSampleCutoff is the fraction of the minimum sample below which
// the factor is additionally halved.
const shortSampleCutoff = 0.2

// maxMargin is the widest margin of error, in score points.
const maxMargin = 15

// Overall weighting across metrics.
const (
	pronunciationWeight = 0.4
	fluencyWeight       = 0.3
	grammarWeight       = 0.3
)

// Calculate builds the full confidence profile for one assessment from
// the audio signal. Vocabulary shares the grammar confidence: both feed
// on the same transcript sample.
func Calculate(sig types.AudioSignal) types.ConfidenceProfile {
	pron := metricConfidence(sig.Quality, sig.Duration.Seconds(), minPronunciationSample.Seconds())
	flu := metricConfidence(sig.Quality, sig.Duration.Seconds(), minFluencySample.Seconds())
	gram := metricConfidence(sig.Quality, float64(sig.WordCount), minGrammarWords)

	overall := pron.Score*pronunciationWeight + flu.Score*fluencyWeight + gram.Score*grammarWeight

	return types.ConfidenceProfile{
		Overall: types.MetricConfidence{
			Level: levelForScore(overall),
			Score: overall,
		},
		ByMetric: map[types.Metric]types.MetricConfidence{
			types.MetricPronunciation: pron,
			types.MetricFluency:       flu,
			types.MetricGrammar:       gram,
			types.MetricVocabulary:    gram,
		},
	}
}

// metricConfidence computes one metric's confidence: a base from audio
// quality bands, scaled by how much of the required sample is present,
// with an extra halving for samples under 20% of the minimum.
func metricConfidence(quality, sample, minSample float64) types.MetricConfidence {
	var base float64
	switch {
	case quality >= 90:
		base = 0.95
	case quality >= 75:
		base = 0.85
	case quality >= 60:
		base = 0.70
	default:
		base = 0.50
	}

	factor := 1.0
	if minSample > 0 {
		factor = min(1, sample/minSample)
	}
	if factor < shortSampleCutoff {
		factor *= 0.5
	}

	final := base * factor

	return types.MetricConfidence{
		Level:         levelForScore(final * 100),
		Score:         final * 100,
		MarginOfError: (1 - final) * maxMargin,
	}
}

func levelForScore(score float64) types.ConfidenceLevel {
	switch {
	case score >= 90:
		return types.ConfidenceHigh
	case score >= 75:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}
