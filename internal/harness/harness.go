package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/episim/internal/agent"
	"github.com/roach88/episim/internal/config"
	"github.com/roach88/episim/internal/engine"
	"github.com/roach88/episim/internal/population"
	"github.com/roach88/episim/internal/rng"
	"github.com/roach88/episim/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Resolve and validate the run configuration
// 2. Run one trial per seed pair, each with its own random source
// 3. Evaluate every assertion against every trial
//
// A returned error means the scenario could not run at all. Failed
// assertions are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	cfg, err := scenario.ResolveConfig()
	if err != nil {
		return nil, fmt.Errorf("resolve config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	seeds := scenario.Seeds
	if len(seeds) == 0 {
		seeds = []rng.Seed{cfg.Seed}
	}

	result := NewResult()
	for _, seed := range seeds {
		trial, err := RunTrial(ctx, cfg, scenario.Population, seed)
		if err != nil {
			return nil, fmt.Errorf("trial %d/%d: %w", seed.General, seed.Geometric, err)
		}
		result.Trials = append(result.Trials, trial)

		for _, msg := range EvaluateAssertions(trial, scenario.Assertions) {
			if len(seeds) > 1 {
				msg = fmt.Sprintf("seed %d/%d: %s", seed.General, seed.Geometric, msg)
			}
			result.AddError(msg)
		}
	}

	slog.Debug("scenario complete",
		"scenario", scenario.Name,
		"trials", len(result.Trials),
		"pass", result.Pass,
	)
	return result, nil
}

// RunTrial runs cfg once with the given seed pair. A non-empty agents list is
// used as the initial population instead of drawing one.
func RunTrial(ctx context.Context, cfg config.Config, agents []agent.Agent, seed rng.Seed) (Trial, error) {
	src := rng.New(seed)

	var (
		pop *population.Population
		err error
	)
	if len(agents) > 0 {
		pop, err = population.FromAgents(agents)
	} else {
		pop, err = population.New(cfg.Agents, src)
	}
	if err != nil {
		return Trial{}, err
	}

	var opts []engine.Option
	if cfg.Strict {
		opts = append(opts, engine.WithStrict())
	}

	rec := testutil.NewRecorder()
	eng, err := engine.New(pop, cfg.Parameters, src, rec, opts...)
	if err != nil {
		return Trial{}, err
	}

	trial := Trial{
		Seed:   seed,
		Before: pop.Summary(),
	}
	if err := eng.Run(ctx); err != nil {
		return Trial{}, err
	}
	trial.After = pop.Summary()
	trial.Reports = rec.Reports()
	return trial, nil
}
