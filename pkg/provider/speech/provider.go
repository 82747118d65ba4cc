// Package speech defines the Provider interface for pronunciation
// assessment backends.
//
// A speech provider takes recorded audio and returns word- and
// phoneme-level evidence (accuracy scores, timings, ranked phoneme
// candidates) plus the recognizer's own headline scores. The
// mispronunciation detector and the fluency recalibrator consume that
// evidence; they deliberately do not trust the headline scores alone.
//
// Implementors must be safe for concurrent use.
package speech

import (
	"context"

	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// AssessConfig controls a single assessment request.
type AssessConfig struct {
	// ReferenceText is the expected text. Empty requests self-referenced
	// assessment: the recognizer scores against its own transcription,
	// which inflates headline scores but still exposes substitutions in
	// the phoneme candidate data.
	ReferenceText string

	// Language is the BCP-47 recognition language. Default: "en-US".
	Language string

	// SampleRate is the PCM sample rate in Hz. Default: 16000.
	SampleRate int

	// PhonemeCandidates is how many ranked candidates to request per
	// phoneme slot. At least 1; richer N-best improves pattern
	// detection. Default: 5.
	PhonemeCandidates int
}

// Result is one completed pronunciation assessment.
type Result struct {
	// Transcript carries the recognized text with word and phoneme
	// evidence.
	Transcript types.Transcript

	// Headline scores as reported by the recognizer, 0–100 each.
	PronunciationScore float64
	AccuracyScore      float64
	FluencyScore       float64
	ProsodyScore       float64
	CompletenessScore  float64
}

// Provider is the abstraction over any pronunciation assessment
// backend.
type Provider interface {
	// Assess submits one utterance of PCM audio and blocks until the
	// full assessment arrives or ctx is done.
	Assess(ctx context.Context, audio []byte, cfg AssessConfig) (*Result, error)
}
