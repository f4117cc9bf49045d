// Package agent defines a single simulated individual.
package agent

import (
	"fmt"

	"github.com/roach88/episim/internal/rng"
)

// Sex is fixed at creation and never mutated.
type Sex int

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return fmt.Sprintf("sex(%d)", int(s))
	}
}

// Stage bounds. 0 is susceptible; 1..MaxStage are increasing infection stages.
const (
	Susceptible = 0
	MaxStage    = 5
	NumStages   = MaxStage + 1
)

// Construction distribution.
const (
	MinInitialAge        = 15.0
	MaxInitialAge        = 20.0
	InitialStageSuccessP = 0.9
)

// Drawer is the subset of *rng.Source an Agent needs.
type Drawer interface {
	UniformInt(low, high int) int
	UniformReal(low, high float64) float64
	Float64() float64
	Geometric(p float64) int
}

var _ Drawer = (*rng.Source)(nil)

// Agent is one individual's mutable state.
//
// INVARIANTS:
//   - 0 <= Stage <= MaxStage
//   - Age >= 0 and only grows
//   - Stage never returns to Susceptible once it leaves it
type Agent struct {
	Sex   Sex     `json:"sex" yaml:"sex"`
	Age   float64 `json:"age" yaml:"age"`
	Stage int     `json:"stage" yaml:"stage"`
}

// New draws a fresh agent: sex uniformly from {Male, Female}, age uniformly in
// [15, 20) and an initial stage from a shifted geometric draw.
func New(d Drawer) Agent {
	return Agent{
		Sex:   Sex(d.UniformInt(int(Male), int(Female))),
		Age:   d.UniformReal(MinInitialAge, MaxInitialAge),
		Stage: ClampStage(d.Geometric(InitialStageSuccessP) - 1),
	}
}

// ClampStage forces a stage value into [Susceptible, MaxStage].
func ClampStage(stage int) int {
	if stage < Susceptible {
		return Susceptible
	}
	if stage > MaxStage {
		return MaxStage
	}
	return stage
}

// Infected reports whether the agent has left the susceptible stage.
func (a *Agent) Infected() bool {
	return a.Stage > Susceptible
}

// InfectionEvent exposes a susceptible agent to the mean-field infection risk
// forceInfection * probNewPartner * prevalence. One uniform draw is taken; a
// draw below the risk moves the agent to stage 1.
//
// Already infected agents take no draw and are left untouched. Inputs are not
// range checked: a risk above 1 makes infection certain.
//
// Returns true if the agent became infected.
func (a *Agent) InfectionEvent(d Drawer, prevalence, probNewPartner, forceInfection float64) bool {
	if a.Stage != Susceptible {
		return false
	}
	risk := forceInfection * probNewPartner * prevalence
	if d.Float64() < risk {
		a.Stage = 1
		return true
	}
	return false
}

// AgeEvent advances the agent's age.
func (a *Agent) AgeEvent(elapsed float64) {
	a.Age += elapsed
}
