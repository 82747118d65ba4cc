// Package postgres is the PostgreSQL-backed assessment history store.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SwarupShekhar/ENGAPP/internal/history"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

var _ history.Store = (*Store)(nil)

// Store persists assessment records in an assessments table. It holds
// a single [pgxpool.Pool]; all operations are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore establishes a connection pool to the PostgreSQL database at
// dsn and runs [Migrate] to ensure the assessments table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("history store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("history store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Save implements [history.Store].
func (s *Store) Save(ctx context.Context, rec history.Record) error {
	const q = `
		INSERT INTO assessments
		    (id, learner_id, level, grammar_score, vocabulary_score,
		     fluency_score, pronunciation_score, overall_score,
		     problem_sounds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, q,
		rec.AssessmentID,
		rec.LearnerID,
		string(rec.Level),
		rec.GrammarScore,
		rec.VocabularyScore,
		rec.FluencyScore,
		rec.PronunciationScore,
		rec.OverallScore,
		rec.ProblemSounds,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("history store: save: %w", err)
	}
	return nil
}

// Recent implements [history.Store]. It returns up to limit records for
// learnerID, newest first.
func (s *Store) Recent(ctx context.Context, learnerID string, limit int) ([]history.Record, error) {
	q := `
		SELECT id, learner_id, level, grammar_score, vocabulary_score,
		       fluency_score, pronunciation_score, overall_score,
		       problem_sounds, created_at
		FROM   assessments
		WHERE  learner_id = $1
		ORDER  BY created_at DESC`

	args := []any{learnerID}
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf("\nLIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history store: recent: %w", err)
	}
	return collectRecords(rows)
}

// Close releases all connections held by the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

func collectRecords(rows pgx.Rows) ([]history.Record, error) {
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (history.Record, error) {
		var (
			r     history.Record
			level string
		)
		if err := row.Scan(
			&r.AssessmentID,
			&r.LearnerID,
			&level,
			&r.GrammarScore,
			&r.VocabularyScore,
			&r.FluencyScore,
			&r.PronunciationScore,
			&r.OverallScore,
			&r.ProblemSounds,
			&r.CreatedAt,
		); err != nil {
			return history.Record{}, err
		}
		r.Level = types.CEFRLevel(level)
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("history store: scan rows: %w", err)
	}
	if recs == nil {
		recs = []history.Record{}
	}
	return recs, nil
}
