// Package history persists completed assessments per learner and
// derives pronunciation trends across sessions: sounds that improved,
// issues that persist, and issues that are new.
package history

import (
	"context"
	"time"

	"github.com/SwarupShekhar/ENGAPP/internal/assess"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// Record is the persisted slice of one assessment. It carries only
// what trend analysis and progress display need, not the full result.
type Record struct {
	// AssessmentID is the originating result ID.
	AssessmentID string

	// LearnerID identifies whose assessment this is.
	LearnerID string

	Level types.CEFRLevel

	GrammarScore       float64
	VocabularyScore    float64
	FluencyScore       float64
	PronunciationScore float64
	OverallScore       float64

	// ProblemSounds lists the interference pattern names detected in
	// this session, deduplicated.
	ProblemSounds []string

	CreatedAt time.Time
}

// NewRecord extracts the persisted slice from a finished assessment.
func NewRecord(learnerID string, res *assess.Result) Record {
	rec := Record{
		AssessmentID:       res.ID,
		LearnerID:          learnerID,
		Level:              res.Level,
		GrammarScore:       res.Metrics.Grammar.Value,
		VocabularyScore:    res.Metrics.Vocabulary.Value,
		FluencyScore:       res.Metrics.Fluency.Value,
		PronunciationScore: res.Metrics.Pronunciation.Value,
		OverallScore:       res.Metrics.Overall,
		CreatedAt:          res.CreatedAt,
	}
	if res.Insights != nil {
		seen := map[string]struct{}{}
		for _, p := range res.Insights.Patterns {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			rec.ProblemSounds = append(rec.ProblemSounds, p.Name)
		}
	}
	return rec
}

// Store persists assessment records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save appends one record.
	Save(ctx context.Context, rec Record) error

	// Recent returns up to limit records for the learner, newest first.
	Recent(ctx context.Context, learnerID string, limit int) ([]Record, error)
}
