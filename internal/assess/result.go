package assess

import (
	"time"

	"github.com/SwarupShekhar/ENGAPP/internal/mispron"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// Metrics holds the four dimension scores plus the weighted overall
// score. Each analyzer owns and fully computes its dimension; the
// orchestrator only composes.
type Metrics struct {
	Grammar       types.DimensionScore
	Vocabulary    types.DimensionScore
	Fluency       types.DimensionScore
	Pronunciation types.DimensionScore

	// Overall is the weighted composite, 0–100.
	Overall float64
}

// Result is one completed assessment. It is created once per request by
// the orchestrator and never mutated after construction; persistence is
// the history store's concern.
type Result struct {
	// ID uniquely identifies this assessment.
	ID string

	// CreatedAt is when the assessment finished.
	CreatedAt time.Time

	// Level is the final CEFR estimate, refined by the overall score.
	Level types.CEFRLevel

	// LevelScore is the numeric score backing the level, 0–100.
	LevelScore float64

	// Confidence carries per-metric and overall confidence.
	Confidence types.ConfidenceProfile

	// Errors lists the verified language errors, worst first.
	Errors []types.ErrorRecord

	Metrics Metrics

	// Feedback is the learner-facing summary text.
	Feedback string

	// Strengths and Weaknesses carry at most three entries each.
	Strengths  []string
	Weaknesses []string

	// Tasks recommends at most three practice exercises.
	Tasks []types.PracticeTask

	// Insights is the phonetic insight report, nil when the speech
	// evidence showed no issues or no speech evidence was supplied.
	Insights *mispron.Report

	// Fallback is true when every analyzer failed and the result
	// carries neutral defaults with disclaimer feedback.
	Fallback bool

	// Elapsed is the wall-clock assessment time.
	Elapsed time.Duration
}
