package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/episim/internal/agent"
	"github.com/roach88/episim/internal/population"
	"github.com/roach88/episim/internal/report"
)

// Source supplies every random draw the engine and its agents make.
// Implemented by *rng.Source.
type Source interface {
	agent.Drawer
	population.Shuffler
}

// State is the engine's lifecycle position.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine drives one simulation run.
//
// The engine owns its population for the duration of the run. Callers may
// read it between steps via Population, but must not mutate it.
//
// INVARIANTS:
//   - Population size never changes
//   - Prevalence is computed exactly once per step, before any agent mutates
//   - Step i is reported as StartDate + i/DaysPerYear
//
// Thread-safety: Step and Run must be called from one goroutine.
// Progress may be polled concurrently through Clock.
type Engine struct {
	pop      *population.Population
	params   Parameters
	src      Source
	reporter report.Reporter
	clock    *Clock
	state    State
	steps    int
	runID    string
	strict   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrict rejects probabilities outside [0, 1] at construction.
func WithStrict() Option {
	return func(e *Engine) {
		e.strict = true
	}
}

// WithRunID labels the run in log output.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}

// New validates params and creates an engine over pop.
//
// A nil reporter discards reports. All configuration errors are reported here,
// before any step runs.
func New(
	pop *population.Population,
	params Parameters,
	src Source,
	reporter report.Reporter,
	opts ...Option,
) (*Engine, error) {
	e := &Engine{
		pop:      pop,
		params:   params,
		src:      src,
		reporter: reporter,
		clock:    NewClock(),
		state:    StateNotStarted,
	}
	for _, opt := range opts {
		opt(e)
	}

	if pop == nil || pop.Len() == 0 {
		return nil, newConfigError(ErrCodeEmptyPopulation, "agents", "population has no agents")
	}
	if src == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if err := params.Validate(e.strict); err != nil {
		return nil, err
	}
	if e.reporter == nil {
		e.reporter = report.Discard
	}
	e.steps = params.NumIterations()

	return e, nil
}

// Step runs one step and returns its report.
//
// Returns ErrCompleted if no steps remain. A reporter error is returned
// wrapped; the step's mutations have already been applied at that point.
func (e *Engine) Step(ctx context.Context) (report.StepReport, error) {
	if e.state == StateCompleted {
		return report.StepReport{}, ErrCompleted
	}
	i := int(e.clock.Current())
	if i >= e.steps {
		e.complete()
		return report.StepReport{}, ErrCompleted
	}
	e.state = StateRunning

	// Order only decides who draws first; outcomes do not depend on it
	// because prevalence is frozen below.
	e.pop.Shuffle(e.src)

	prevalence := e.pop.Prevalence()
	newInfections := 0
	e.pop.Each(func(_ int, a *agent.Agent) {
		if a.InfectionEvent(e.src, prevalence, e.params.ProbNewPartner, e.params.ForceInfection) {
			newInfections++
		}
		a.AgeEvent(e.params.TimeStep)
	})

	r := report.StepReport{
		Step:       i,
		Date:       e.params.StartDate + float64(i)/DaysPerYear,
		Infected:   e.pop.Infected(),
		Prevalence: e.pop.Prevalence(),
		Size:       e.pop.Len(),
	}
	e.clock.Next()

	slog.Debug("step complete",
		"run_id", e.runID,
		"step", i,
		"prevalence_before", prevalence,
		"new_infections", newInfections,
		"infected", r.Infected,
	)

	if err := e.reporter.Report(ctx, r); err != nil {
		return r, fmt.Errorf("report step %d: %w", i, err)
	}

	if int(e.clock.Current()) >= e.steps {
		e.complete()
	}
	return r, nil
}

// Run takes every remaining step.
//
// A run with zero iterations completes immediately without reporting. A
// cancelled ctx stops the run between steps and returns ctx.Err(); the engine
// can be resumed with a fresh context.
// Returns ErrCompleted if the engine had already completed.
func (e *Engine) Run(ctx context.Context) error {
	if e.state == StateCompleted {
		return ErrCompleted
	}

	slog.Info("simulation starting",
		"run_id", e.runID,
		"agents", e.pop.Len(),
		"steps", e.steps,
		"time_step", e.params.TimeStep,
		"start_date", e.params.StartDate,
	)

	if e.steps == 0 {
		e.complete()
	}
	for e.state != StateCompleted {
		if err := ctx.Err(); err != nil {
			slog.Info("simulation cancelled",
				"run_id", e.runID,
				"step", e.clock.Current(),
			)
			return err
		}
		if _, err := e.Step(ctx); err != nil {
			slog.Error("simulation aborted",
				"run_id", e.runID,
				"step", e.clock.Current(),
				"error", err,
			)
			return err
		}
	}

	slog.Info("simulation completed",
		"run_id", e.runID,
		"steps", e.clock.Current(),
		"infected", e.pop.Infected(),
		"prevalence", e.pop.Prevalence(),
	)
	return nil
}

func (e *Engine) complete() {
	e.state = StateCompleted
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Steps returns the total number of steps this run will take.
func (e *Engine) Steps() int {
	return e.steps
}

// Clock returns the step clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Population returns the population being simulated. Read only.
func (e *Engine) Population() *population.Population {
	return e.pop
}

// Parameters returns the run parameters.
func (e *Engine) Parameters() Parameters {
	return e.params
}

// RunID returns the label set by WithRunID.
func (e *Engine) RunID() string {
	return e.runID
}
