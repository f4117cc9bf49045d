package store

import (
	"errors"

	"github.com/roach88/episim/internal/engine"
	"github.com/roach88/episim/internal/rng"
)

// ErrRunNotFound is returned when a run ID has no row in the store.
var ErrRunNotFound = errors.New("run not found")

// RunInfo describes a stored run: enough to rerun it and compare.
type RunInfo struct {
	ID         string            `json:"id"`
	Label      string            `json:"label,omitempty"`
	Seed       rng.Seed          `json:"seed"`
	Parameters engine.Parameters `json:"parameters"`
	Agents     int               `json:"agents"`
	Steps      int               `json:"steps"`

	// Completed is set by FinishRun. A run without it stopped early.
	Completed bool `json:"completed"`
}
