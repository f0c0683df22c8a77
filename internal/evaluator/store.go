package evaluator

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/postgres"
)

// Schema creates the evaluation history table.
const Schema = `CREATE TABLE IF NOT EXISTS evaluation_runs (
    id            BIGSERIAL PRIMARY KEY,
    run_id        TEXT NOT NULL,
    method        TEXT NOT NULL,
    total         INTEGER NOT NULL,
    correct       INTEGER NOT NULL,
    fallbacks     INTEGER NOT NULL,
    accuracy      DOUBLE PRECISION NOT NULL,
    fallback_rate DOUBLE PRECISION NOT NULL,
    threshold     DOUBLE PRECISION,
    evaluated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Run is one stored evaluation row.
type Run struct {
	RunID       string
	Result      Result
	Threshold   sql.NullFloat64
	EvaluatedAt time.Time
}

// Store persists evaluation results in PostgreSQL.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates a Store over db.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "evaluation-store"),
	}
}

// Migrate creates the table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating evaluation_runs table: %w", err)
	}
	return nil
}

// SaveRun inserts every result of one run in a single transaction.
// thresholds maps methods to the threshold their index was trained with.
func (s *Store) SaveRun(ctx context.Context, runID string, results []Result, thresholds map[faq.Method]float64) error {
	now := time.Now().UTC()
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO evaluation_runs
			(run_id, method, total, correct, fallbacks, accuracy, fallback_rate, threshold, evaluated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range results {
			threshold := sql.NullFloat64{}
			if t, ok := thresholds[r.Method]; ok {
				threshold = sql.NullFloat64{Float64: t, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx,
				runID, r.Method.String(), r.Total, r.Correct, r.Fallbacks,
				r.Accuracy(), r.FallbackRate(), threshold, now,
			); err != nil {
				return fmt.Errorf("inserting %s result: %w", r.Method, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving evaluation run: %w", err)
	}
	s.logger.Info("evaluation run saved", "run_id", runID, "methods", len(results))
	return nil
}

// LatestRuns returns the most recent rows, newest first.
func (s *Store) LatestRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT run_id, method, total, correct, fallbacks, threshold, evaluated_at
		 FROM evaluation_runs ORDER BY evaluated_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing evaluation runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var method string
		if err := rows.Scan(&run.RunID, &method, &run.Result.Total, &run.Result.Correct,
			&run.Result.Fallbacks, &run.Threshold, &run.EvaluatedAt); err != nil {
			return nil, fmt.Errorf("scanning evaluation row: %w", err)
		}
		parsed, err := faq.ParseMethod(method)
		if err != nil {
			s.logger.Warn("skipping row with unknown method", "method", method)
			continue
		}
		run.Result.Method = parsed
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
