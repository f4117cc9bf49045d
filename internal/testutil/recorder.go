// Package testutil holds deterministic test doubles shared across packages.
package testutil

import (
	"context"
	"sync"

	"github.com/roach88/episim/internal/report"
)

// Recorder is a report.Reporter that keeps every report it receives.
//
// Recorder can be reset for test reuse, so the same run can be repeated and
// compared against the first.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Recorder struct {
	mu      sync.Mutex
	reports []report.StepReport
	err     error
	failAt  int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{failAt: -1}
}

// NewFailingRecorder creates a recorder that returns err when asked to record
// the report for step failAt. Earlier reports are kept.
func NewFailingRecorder(failAt int, err error) *Recorder {
	return &Recorder{failAt: failAt, err: err}
}

// Report records r.
func (r *Recorder) Report(_ context.Context, sr report.StepReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAt >= 0 && sr.Step == r.failAt {
		return r.err
	}
	r.reports = append(r.reports, sr)
	return nil
}

// Reports returns a copy of the recorded reports in arrival order.
func (r *Recorder) Reports() []report.StepReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]report.StepReport, len(r.reports))
	copy(out, r.reports)
	return out
}

// Len returns the number of recorded reports.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

// Reset discards recorded reports.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = nil
}
