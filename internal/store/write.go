package store

import (
	"context"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/episim/internal/report"
)

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - rewriting the same run ID
// is silently ignored. The label is stored NFC-normalized.
func (s *Store) WriteRun(ctx context.Context, run RunInfo) error {
	if run.ID == "" {
		return fmt.Errorf("write run: run ID is required")
	}

	seedJSON, err := marshalSeed(run.Seed)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	paramsJSON, err := marshalParameters(run.Parameters)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, label, seed, parameters, agents, steps, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		norm.NFC.String(run.Label),
		seedJSON,
		paramsJSON,
		run.Agents,
		run.Steps,
		run.Completed,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}

// WriteStep inserts one step report for a run.
// Uses ON CONFLICT(run_id, step) DO NOTHING for idempotency.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteStep(ctx context.Context, runID string, r report.StepReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO steps
		(run_id, step, date, infected, prevalence, size)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, step) DO NOTHING
	`,
		runID,
		r.Step,
		r.Date,
		r.Infected,
		r.Prevalence,
		r.Size,
	)
	if err != nil {
		return fmt.Errorf("write step %d: %w", r.Step, err)
	}

	return nil
}

// FinishRun marks a run as completed.
// Returns ErrRunNotFound if the run does not exist.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET completed = 1 WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}
