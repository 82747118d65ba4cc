package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlAssessments = `
CREATE TABLE IF NOT EXISTS assessments (
    id                  TEXT         PRIMARY KEY,
    learner_id          TEXT         NOT NULL,
    level               TEXT         NOT NULL,
    grammar_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
    vocabulary_score    DOUBLE PRECISION NOT NULL DEFAULT 0,
    fluency_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
    pronunciation_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    overall_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
    problem_sounds      TEXT[]       NOT NULL DEFAULT '{}',
    created_at          TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_assessments_learner_id
    ON assessments (learner_id);

CREATE INDEX IF NOT EXISTS idx_assessments_learner_created
    ON assessments (learner_id, created_at DESC);
`

// Migrate creates or ensures the assessments table exists. It is
// idempotent and safe to call on every application start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlAssessments); err != nil {
		return fmt.Errorf("history migrate: %w", err)
	}
	return nil
}
