package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/episim/internal/engine"
	"github.com/roach88/episim/internal/report"
	"github.com/roach88/episim/internal/rng"
)

// createTestStore creates a new temporary store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run record with the tutorial parameters.
func createTestRun(id string) RunInfo {
	params := engine.DefaultParameters()
	return RunInfo{
		ID:         id,
		Label:      "test",
		Seed:       rng.DefaultSeeds(),
		Parameters: params,
		Agents:     100,
		Steps:      params.NumIterations(),
	}
}

// createTestStep creates a step report for a population of 100.
func createTestStep(step, infected int) report.StepReport {
	return report.StepReport{
		Step:       step,
		Date:       2015 + float64(step)/engine.DaysPerYear,
		Infected:   infected,
		Prevalence: float64(infected) / 100,
		Size:       100,
	}
}
