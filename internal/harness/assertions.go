package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/episim/internal/engine"
	"github.com/roach88/episim/internal/report"
)

// dateTolerance absorbs the rounding of StartDate + i/DaysPerYear.
const dateTolerance = 1e-9

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Step     int    // First failing step, or -1 if not step-specific
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	if e.Step >= 0 {
		fmt.Fprintf(&buf, "  At step: %d\n", e.Step)
	}
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)

	return buf.String()
}

// EvaluateAssertions checks every assertion against trial and returns the
// failure messages in assertion order.
func EvaluateAssertions(trial Trial, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(trial, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(trial Trial, a Assertion) error {
	switch a.Type {
	case AssertStepCount:
		return assertStepCount(trial, a)
	case AssertFinalInfectedAtLeastInitial:
		return assertFinalInfectedAtLeastInitial(trial)
	case AssertInfectedConstant:
		return assertInfectedConstant(trial)
	case AssertInfectedNondecreasing:
		return assertInfectedNondecreasing(trial)
	case AssertPrevalenceBounds:
		return assertPrevalenceBounds(trial, a)
	case AssertDatesIncreasing:
		return assertDatesIncreasing(trial)
	case AssertPopulationConserved:
		return assertPopulationConserved(trial)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertStepCount(trial Trial, a Assertion) error {
	want := 0
	if a.Count != nil {
		want = *a.Count
	}
	if got := len(trial.Reports); got != want {
		return &AssertionError{
			Type:     AssertStepCount,
			Expected: fmt.Sprintf("%d step reports", want),
			Actual:   fmt.Sprintf("%d step reports", got),
			Step:     -1,
		}
	}
	return nil
}

// initialInfected is the infected count of the population before step 0.
func initialInfected(trial Trial) int {
	return trial.Before.Size - trial.Before.Stages[0]
}

func assertFinalInfectedAtLeastInitial(trial Trial) error {
	if len(trial.Reports) == 0 {
		return nil
	}
	initial := initialInfected(trial)
	last := trial.Reports[len(trial.Reports)-1]
	if last.Infected < initial {
		return &AssertionError{
			Type:     AssertFinalInfectedAtLeastInitial,
			Expected: fmt.Sprintf("at least %d infected", initial),
			Actual:   fmt.Sprintf("%d infected", last.Infected),
			Step:     last.Step,
		}
	}
	return nil
}

func assertInfectedConstant(trial Trial) error {
	initial := initialInfected(trial)
	for _, r := range trial.Reports {
		if r.Infected != initial {
			return &AssertionError{
				Type:     AssertInfectedConstant,
				Expected: fmt.Sprintf("%d infected", initial),
				Actual:   fmt.Sprintf("%d infected", r.Infected),
				Step:     r.Step,
			}
		}
	}
	return nil
}

func assertInfectedNondecreasing(trial Trial) error {
	prev := initialInfected(trial)
	for _, r := range trial.Reports {
		if r.Infected < prev {
			return &AssertionError{
				Type:     AssertInfectedNondecreasing,
				Expected: fmt.Sprintf("at least %d infected", prev),
				Actual:   fmt.Sprintf("%d infected", r.Infected),
				Step:     r.Step,
			}
		}
		prev = r.Infected
	}
	return nil
}

func assertPrevalenceBounds(trial Trial, a Assertion) error {
	lo, hi := a.bounds()
	for _, r := range trial.Reports {
		if math.IsNaN(r.Prevalence) || r.Prevalence < lo || r.Prevalence > hi {
			return &AssertionError{
				Type:     AssertPrevalenceBounds,
				Expected: fmt.Sprintf("prevalence in [%s, %s]", report.FormatFloat(lo), report.FormatFloat(hi)),
				Actual:   report.FormatFloat(r.Prevalence),
				Step:     r.Step,
			}
		}
	}
	return nil
}

func assertDatesIncreasing(trial Trial) error {
	for i := 1; i < len(trial.Reports); i++ {
		prev, cur := trial.Reports[i-1], trial.Reports[i]
		gap := cur.Date - prev.Date
		if !(gap > 0) || math.Abs(gap-1/engine.DaysPerYear) > dateTolerance {
			return &AssertionError{
				Type:     AssertDatesIncreasing,
				Expected: fmt.Sprintf("date after %s by one day", report.FormatFloat(prev.Date)),
				Actual:   report.FormatFloat(cur.Date),
				Step:     cur.Step,
			}
		}
	}
	return nil
}

func assertPopulationConserved(trial Trial) error {
	size := trial.Before.Size
	if trial.After.Size != size {
		return &AssertionError{
			Type:     AssertPopulationConserved,
			Expected: fmt.Sprintf("final size %d", size),
			Actual:   fmt.Sprintf("final size %d", trial.After.Size),
			Step:     -1,
		}
	}
	total := 0
	for _, n := range trial.After.Stages {
		total += n
	}
	if total != size {
		return &AssertionError{
			Type:     AssertPopulationConserved,
			Expected: fmt.Sprintf("final stage counts summing to %d", size),
			Actual:   fmt.Sprintf("stage counts summing to %d", total),
			Step:     -1,
		}
	}
	for _, r := range trial.Reports {
		if r.Size != size {
			return &AssertionError{
				Type:     AssertPopulationConserved,
				Expected: fmt.Sprintf("size %d", size),
				Actual:   fmt.Sprintf("size %d", r.Size),
				Step:     r.Step,
			}
		}
	}
	return nil
}
