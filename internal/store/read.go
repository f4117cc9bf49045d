package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/episim/internal/report"
)

const runColumns = `id, label, seed, parameters, agents, steps, completed`

// GetRun retrieves a run by ID.
// Returns ErrRunNotFound if it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (RunInfo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every run in insertion order.
// Returns an empty slice (not nil) if the store has no runs.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FindIncompleteRuns returns runs that were never marked completed, in
// insertion order. These are runs that stopped early.
func (s *Store) FindIncompleteRuns(ctx context.Context) ([]RunInfo, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("find incomplete runs: %w", err)
	}
	incomplete := []RunInfo{}
	for _, run := range runs {
		if !run.Completed {
			incomplete = append(incomplete, run)
		}
	}
	return incomplete, nil
}

// ReadSteps returns the stored step reports of a run ordered by step.
// Returns ErrRunNotFound if the run does not exist, and an empty slice
// (not nil) for a run with no steps.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]report.StepReport, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT step, date, infected, prevalence, size
		FROM steps
		WHERE run_id = ?
		ORDER BY step ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []report.StepReport{}
	for rows.Next() {
		var r report.StepReport
		if err := rows.Scan(&r.Step, &r.Date, &r.Infected, &r.Prevalence, &r.Size); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// LastStep returns the highest stored step of a run, or -1 if it has none.
func (s *Store) LastStep(ctx context.Context, runID string) (int, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(step) FROM steps WHERE run_id = ?`, runID,
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("last step: %w", err)
	}
	if !last.Valid {
		return -1, nil
	}
	return int(last.Int64), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunInfo, error) {
	var (
		run        RunInfo
		seedJSON   string
		paramsJSON string
	)
	if err := row.Scan(
		&run.ID,
		&run.Label,
		&seedJSON,
		&paramsJSON,
		&run.Agents,
		&run.Steps,
		&run.Completed,
	); err != nil {
		return RunInfo{}, err
	}

	var err error
	if run.Seed, err = unmarshalSeed(seedJSON); err != nil {
		return RunInfo{}, err
	}
	if run.Parameters, err = unmarshalParameters(paramsJSON); err != nil {
		return RunInfo{}, err
	}
	return run, nil
}
