// Package types defines the shared domain types exchanged between the
// speech-recognition provider boundary, the individual analyzers, and the
// assessment orchestrator.
//
// Values of these types are treated as immutable once handed across a
// package boundary: analyzers receive read-only copies of the evidence and
// return freshly built results. None of the types carry synchronisation —
// concurrency safety comes from the no-shared-mutable-state discipline in
// the orchestrator.
package types

import "time"

// Metric identifies one of the assessed proficiency dimensions.
type Metric string

const (
	MetricGrammar       Metric = "grammar"
	MetricVocabulary    Metric = "vocabulary"
	MetricFluency       Metric = "fluency"
	MetricPronunciation Metric = "pronunciation"
)

// CEFRLevel is one of the six Common European Framework bands.
type CEFRLevel string

const (
	CEFRA1 CEFRLevel = "A1"
	CEFRA2 CEFRLevel = "A2"
	CEFRB1 CEFRLevel = "B1"
	CEFRB2 CEFRLevel = "B2"
	CEFRC1 CEFRLevel = "C1"
	CEFRC2 CEFRLevel = "C2"
)

// Levels lists all CEFR bands in ascending order of proficiency.
var Levels = []CEFRLevel{CEFRA1, CEFRA2, CEFRB1, CEFRB2, CEFRC1, CEFRC2}

// IsValid reports whether l is a recognised CEFR band.
func (l CEFRLevel) IsValid() bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

// ErrorKind classifies how a word deviated from the reference, as reported
// by the recognizer.
type ErrorKind string

const (
	ErrorNone             ErrorKind = "None"
	ErrorOmission         ErrorKind = "Omission"
	ErrorInsertion        ErrorKind = "Insertion"
	ErrorMispronunciation ErrorKind = "Mispronunciation"
)

// PhonemeCandidate is one ranked recognition hypothesis for a phoneme slot.
// Rank 0 is the recognizer's top guess; higher ranks are progressively less
// likely alternatives from the N-best list.
type PhonemeCandidate struct {
	Symbol string
	Rank   int
}

// PhonemeObservation is the recognizer's evidence for a single expected
// phoneme inside a word.
//
// Candidates is never empty when AccuracyScore was produced by the
// recognizer; providers that cannot supply N-best data must at least report
// the top candidate. Acceptable is derived by the mispronunciation detector
// and is true whenever HeardAs is unset.
type PhonemeObservation struct {
	// Expected is the reference phoneme symbol (IPA or provider alphabet).
	Expected string

	// AccuracyScore is the recognizer's 0–100 accuracy for this slot.
	AccuracyScore float64

	// Candidates is the ranked N-best list of symbols as actually heard,
	// most likely first.
	Candidates []PhonemeCandidate

	// Offset is the phoneme start time relative to utterance start.
	Offset time.Duration

	// Duration is the phoneme length.
	Duration time.Duration

	// Acceptable reports whether the observation is an exact match or an
	// accent-neutral variant of the expected phoneme.
	Acceptable bool

	// HeardAs is the resolved substitute symbol. Set only when Acceptable
	// is false and a candidate matched a known interference pattern.
	HeardAs string
}

// WordObservation is the recognizer's evidence for a single reference word.
type WordObservation struct {
	Text          string
	AccuracyScore float64
	ErrorKind     ErrorKind

	// Offset is the word start time relative to utterance start.
	Offset time.Duration

	// Duration is the word length.
	Duration time.Duration

	// Phonemes holds the word-internal phoneme observations in spoken order.
	// Empty for omitted words, which never contribute to phoneme-level scans.
	Phonemes []PhonemeObservation
}

// Transcript bundles the recognized text with its word-level evidence.
type Transcript struct {
	Text     string
	Words    []WordObservation
	Duration time.Duration
}

// AudioSignal carries the numeric quality proxies that feed the confidence
// calculator. It is produced by the audio collaborator, not by this module.
type AudioSignal struct {
	// Quality is a 0–100 estimate of recording quality (SNR-derived).
	Quality float64

	// Duration is the length of assessable speech.
	Duration time.Duration

	// WordCount is the number of recognized words.
	WordCount int
}

// DimensionScore is the uniform result shape every analyzer produces for
// its dimension. Value and all Breakdown entries are on the 0–100 scale.
type DimensionScore struct {
	Value         float64
	Breakdown     map[string]float64
	Justification string
}

// Severity grades how much an error impedes comprehension. The three tiers
// map onto the grammar classifier's penalty taxonomy.
type Severity string

const (
	// SeverityCritical blocks comprehension (tier 1).
	SeverityCritical Severity = "critical"

	// SeverityMajor is noticeable but understandable (tier 2).
	SeverityMajor Severity = "major"

	// SeverityMinor is a slip a listener would barely register (tier 3).
	SeverityMinor Severity = "minor"
)

// ErrorRecord is one verified language error surfaced to the learner.
type ErrorRecord struct {
	Kind        Metric
	Severity    Severity
	Original    string
	Corrected   string
	RuleName    string
	Explanation string
}

// ConfidenceLevel buckets a confidence score for display.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "LOW"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceHigh   ConfidenceLevel = "HIGH"
)

// MetricConfidence is the per-metric output of the confidence calculator.
type MetricConfidence struct {
	Level ConfidenceLevel

	// Score is the final confidence on a 0–100 scale.
	Score float64

	// MarginOfError is the ± band, in score points, attached to the metric.
	MarginOfError float64
}

// ConfidenceProfile aggregates per-metric confidence with the weighted
// overall level. It is derived per assessment and never persisted on its
// own — it travels attached to the assessment result.
type ConfidenceProfile struct {
	Overall  MetricConfidence
	ByMetric map[Metric]MetricConfidence
}

// PracticeTask is a recommended follow-up exercise derived from the most
// frequent error types and weaknesses.
type PracticeTask struct {
	Type   string
	Topic  string
	Reason string
}
