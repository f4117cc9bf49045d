package harness

import (
	"github.com/roach88/episim/internal/population"
	"github.com/roach88/episim/internal/report"
	"github.com/roach88/episim/internal/rng"
)

// Trial is the output of one simulation run within a scenario.
type Trial struct {
	Seed    rng.Seed            `json:"seed"`
	Before  population.Summary  `json:"before"`
	After   population.Summary  `json:"after"`
	Reports []report.StepReport `json:"reports"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds for every trial.
	Pass bool `json:"pass"`

	// Trials holds one entry per seed pair, in scenario order.
	Trials []Trial `json:"trials"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trials: []Trial{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
