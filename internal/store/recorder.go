package store

import (
	"context"

	"github.com/roach88/episim/internal/report"
)

// Recorder is a report.Reporter that writes each step report to the store
// under one run ID.
type Recorder struct {
	store *Store
	runID string
}

var _ report.Reporter = (*Recorder)(nil)

// StartRun writes the run record and returns a recorder for its steps.
func (s *Store) StartRun(ctx context.Context, run RunInfo) (*Recorder, error) {
	if err := s.WriteRun(ctx, run); err != nil {
		return nil, err
	}
	return &Recorder{store: s, runID: run.ID}, nil
}

// Report writes r.
func (r *Recorder) Report(ctx context.Context, sr report.StepReport) error {
	return r.store.WriteStep(ctx, r.runID, sr)
}

// Finish marks the run completed.
func (r *Recorder) Finish(ctx context.Context) error {
	return r.store.FinishRun(ctx, r.runID)
}

// RunID returns the run the recorder writes to.
func (r *Recorder) RunID() string {
	return r.runID
}
