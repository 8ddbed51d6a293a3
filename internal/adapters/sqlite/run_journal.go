// Package sqlite contains the SQLite implementation of the run journal.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/monosync/internal/ports/secondary"
)

// RunJournal implements secondary.RunJournal with SQLite.
type RunJournal struct {
	db *sql.DB
}

var _ secondary.RunJournal = (*RunJournal)(nil)

// NewRunJournal creates a new SQLite run journal.
func NewRunJournal(db *sql.DB) *RunJournal {
	return &RunJournal{db: db}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Start records a run that has begun.
func (r *RunJournal) Start(ctx context.Context, run *secondary.RunRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO runs (id, command, started_at, status, marker_before) VALUES (?, ?, ?, ?, ?)",
		run.ID, run.Command, run.StartedAt.UTC(), run.Status, nullString(run.MarkerBefore),
	)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// Finish records the outcome of a run.
func (r *RunJournal) Finish(ctx context.Context, run *secondary.RunRecord) error {
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, marker_after = ?, applied = ?, skipped = ?, conflicted = ?, error = ?
		WHERE id = ?`,
		finished.UTC(), run.Status, nullString(run.MarkerAfter),
		run.Applied, run.Skipped, run.Conflicted, nullString(run.Error),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}

	return nil
}

// List returns the most recent runs, newest first. A non-positive limit returns all.
func (r *RunJournal) List(ctx context.Context, limit int) ([]*secondary.RunRecord, error) {
	query := `SELECT id, command, started_at, finished_at, status, marker_before, marker_after,
		applied, skipped, conflicted, error
		FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RunRecord
	for rows.Next() {
		var (
			finished     sql.NullTime
			markerBefore sql.NullString
			markerAfter  sql.NullString
			errText      sql.NullString
		)
		run := &secondary.RunRecord{}
		if err := rows.Scan(&run.ID, &run.Command, &run.StartedAt, &finished, &run.Status,
			&markerBefore, &markerAfter, &run.Applied, &run.Skipped, &run.Conflicted, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finished.Valid {
			run.FinishedAt = finished.Time
		}
		run.MarkerBefore = markerBefore.String
		run.MarkerAfter = markerAfter.String
		run.Error = errText.String
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
