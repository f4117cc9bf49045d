package engine

import "math"

// DaysPerYear converts a step index into a fractional calendar offset.
// Report dates advance by 1/DaysPerYear per step regardless of TimeStep.
const DaysPerYear = 365.25

// maxSteps bounds NumIterations so the step counter and date arithmetic stay exact.
const maxSteps = math.MaxInt32

// Parameters are the immutable settings for one run.
type Parameters struct {
	// NumYears is the simulated duration in years.
	NumYears float64 `json:"num_years" yaml:"num_years"`

	// TimeStep is the simulated duration of one step in years. Must be > 0.
	TimeStep float64 `json:"time_step" yaml:"time_step"`

	// StartDate is the calendar year of step 0. Display offset only.
	StartDate float64 `json:"start_date" yaml:"start_date"`

	// ProbNewPartner is the per-step probability of a new partnership.
	ProbNewPartner float64 `json:"prob_new_partner" yaml:"prob_new_partner"`

	// ForceInfection is the per-contact transmission probability.
	ForceInfection float64 `json:"force_infection" yaml:"force_infection"`
}

// DefaultParameters returns the tutorial settings: two years of daily steps
// starting in 2015.
//
// REMEMBER: ProbNewPartner is per step. Changing TimeStep without rescaling it
// changes the model.
func DefaultParameters() Parameters {
	return Parameters{
		NumYears:       2.0,
		TimeStep:       1.0 / DaysPerYear,
		StartDate:      2015.0,
		ProbNewPartner: 0.022,
		ForceInfection: 0.1,
	}
}

// NumIterations is floor(NumYears / TimeStep), or 0 when that is negative.
// Call Validate first; the result is meaningless for invalid parameters.
func (p Parameters) NumIterations() int {
	n := math.Floor(p.NumYears / p.TimeStep)
	if !(n > 0) {
		return 0
	}
	return int(n)
}

// Validate checks the parameters. Probabilities are only range checked when
// strict is set; by default any value is accepted and the infection risk is
// used unclamped.
func (p Parameters) Validate(strict bool) error {
	if math.IsNaN(p.TimeStep) || p.TimeStep <= 0 {
		return newConfigError(ErrCodeNonPositiveTimeStep, "time_step",
			"time step must be > 0, got %v", p.TimeStep)
	}
	if math.IsNaN(p.NumYears) || math.IsInf(p.NumYears, 0) {
		return newConfigError(ErrCodeInvalidDuration, "num_years",
			"duration must be finite, got %v", p.NumYears)
	}
	if math.IsNaN(p.StartDate) || math.IsInf(p.StartDate, 0) {
		return newConfigError(ErrCodeInvalidDuration, "start_date",
			"start date must be finite, got %v", p.StartDate)
	}
	if n := math.Floor(p.NumYears / p.TimeStep); n > maxSteps {
		return newConfigError(ErrCodeTooManySteps, "num_years",
			"%v years at %v per step is more than %d steps", p.NumYears, p.TimeStep, maxSteps)
	}
	if !strict {
		return nil
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"prob_new_partner", p.ProbNewPartner},
		{"force_infection", p.ForceInfection},
	} {
		if math.IsNaN(f.value) || f.value < 0 || f.value > 1 {
			return newConfigError(ErrCodeProbabilityOutOfRange, f.name,
				"probability must be in [0, 1], got %v", f.value)
		}
	}
	return nil
}
