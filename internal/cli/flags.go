package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/episim/internal/config"
)

// simFlags are the configuration flags shared by run and replay. Flags the
// user sets override the config file; the rest keep the file's values.
type simFlags struct {
	ConfigPath     string
	Agents         int
	Seed           uint64
	GeometricSeed  uint64
	Years          float64
	TimeStep       float64
	StepsPerYear   float64
	StartDate      float64
	ProbNewPartner float64
	ForceInfection float64
	Strict         bool
	Label          string
}

func (f *simFlags) bind(cmd *cobra.Command) {
	def := config.Default()

	flags := cmd.Flags()
	flags.StringVarP(&f.ConfigPath, "config", "c", "", "config file (.yaml, .yml or .cue)")
	flags.IntVarP(&f.Agents, "agents", "n", def.Agents, "population size")
	flags.Uint64Var(&f.Seed, "seed", def.Seed.General, "seed for uniform draws and shuffles")
	flags.Uint64Var(&f.GeometricSeed, "geometric-seed", def.Seed.Geometric, "seed for geometric draws")
	flags.Float64Var(&f.Years, "years", def.Parameters.NumYears, "simulated duration in years")
	flags.Float64Var(&f.TimeStep, "time-step", def.Parameters.TimeStep, "step length in years")
	flags.Float64Var(&f.StepsPerYear, "steps-per-year", 0, "steps per year (overrides --time-step)")
	flags.Float64Var(&f.StartDate, "start-date", def.Parameters.StartDate, "calendar year of the first step")
	flags.Float64Var(&f.ProbNewPartner, "prob-new-partner", def.Parameters.ProbNewPartner, "per-step probability of a new partner")
	flags.Float64Var(&f.ForceInfection, "force-infection", def.Parameters.ForceInfection, "per-contact transmission probability")
	flags.BoolVar(&f.Strict, "strict", false, "reject probabilities outside [0, 1]")
	flags.StringVar(&f.Label, "label", "", "label recorded with the run")
}

// resolve loads the config file, if any, and applies explicitly set flags.
// The result is validated.
func (f *simFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.ConfigPath != "" {
		loaded, err := config.Load(f.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("agents") {
		cfg.Agents = f.Agents
	}
	if changed("seed") {
		cfg.Seed.General = f.Seed
	}
	if changed("geometric-seed") {
		cfg.Seed.Geometric = f.GeometricSeed
	}
	if changed("years") {
		cfg.Parameters.NumYears = f.Years
	}
	if changed("time-step") {
		cfg.Parameters.TimeStep = f.TimeStep
		cfg.StepsPerYear = 0
	}
	if changed("steps-per-year") {
		cfg.StepsPerYear = f.StepsPerYear
	}
	if changed("start-date") {
		cfg.Parameters.StartDate = f.StartDate
	}
	if changed("prob-new-partner") {
		cfg.Parameters.ProbNewPartner = f.ProbNewPartner
	}
	if changed("force-infection") {
		cfg.Parameters.ForceInfection = f.ForceInfection
	}
	if changed("strict") {
		cfg.Strict = f.Strict
	}
	if changed("label") {
		cfg.Label = f.Label
	}
	cfg.Resolve()

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
