// Package population holds the fixed-size set of agents for a run and the
// aggregate statistics computed over it.
//
// The Population owns its agents as a contiguous slice of values. Nothing
// outside the package holds a pointer to an individual agent; callers mutate
// agents through Each, which hands out a pointer valid only for the callback.
package population

import (
	"errors"
	"fmt"

	"github.com/roach88/episim/internal/agent"
)

// ErrEmptyPopulation is returned when a population would have no agents.
var ErrEmptyPopulation = errors.New("empty population")

// Shuffler permutes n elements in place.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Population is an ordered, fixed-size collection of agents.
//
// Order carries no meaning between steps; it only fixes iteration order
// within a step.
type Population struct {
	agents []agent.Agent
}

// New draws size agents from d.
func New(size int, d agent.Drawer) (*Population, error) {
	if size <= 0 {
		return nil, fmt.Errorf("new population of size %d: %w", size, ErrEmptyPopulation)
	}
	agents := make([]agent.Agent, size)
	for i := range agents {
		agents[i] = agent.New(d)
	}
	return &Population{agents: agents}, nil
}

// FromAgents builds a population from explicit agent values.
// The slice is copied. Sex must be Male or Female, age a number >= 0 and
// stage within [0, MaxStage].
func FromAgents(agents []agent.Agent) (*Population, error) {
	if len(agents) == 0 {
		return nil, ErrEmptyPopulation
	}
	for i, a := range agents {
		if a.Sex != agent.Male && a.Sex != agent.Female {
			return nil, fmt.Errorf("agent %d: invalid %v", i, a.Sex)
		}
		if a.Stage != agent.ClampStage(a.Stage) {
			return nil, fmt.Errorf("agent %d: stage %d outside [0, %d]", i, a.Stage, agent.MaxStage)
		}
		if !(a.Age >= 0) {
			return nil, fmt.Errorf("agent %d: invalid age %v", i, a.Age)
		}
	}
	cp := make([]agent.Agent, len(agents))
	copy(cp, agents)
	return &Population{agents: cp}, nil
}

// Len returns the number of agents. Constant for the life of the population.
func (p *Population) Len() int {
	return len(p.agents)
}

// Agents returns a copy of the agents in current order.
func (p *Population) Agents() []agent.Agent {
	cp := make([]agent.Agent, len(p.agents))
	copy(cp, p.agents)
	return cp
}

// Each calls fn for every agent in current order. The pointer must not be
// retained after fn returns.
func (p *Population) Each(fn func(i int, a *agent.Agent)) {
	for i := range p.agents {
		fn(i, &p.agents[i])
	}
}

// Shuffle permutes the iteration order. Agent values are untouched.
func (p *Population) Shuffle(s Shuffler) {
	s.Shuffle(len(p.agents), func(i, j int) {
		p.agents[i], p.agents[j] = p.agents[j], p.agents[i]
	})
}

// Infected counts agents with stage > 0.
func (p *Population) Infected() int {
	n := 0
	for i := range p.agents {
		if p.agents[i].Infected() {
			n++
		}
	}
	return n
}

// Prevalence is the fraction of agents currently infected.
func (p *Population) Prevalence() float64 {
	return float64(p.Infected()) / float64(len(p.agents))
}

// CountByStage returns the number of agents at each stage in [0, MaxStage].
func (p *Population) CountByStage() [agent.NumStages]int {
	var counts [agent.NumStages]int
	for i := range p.agents {
		counts[p.agents[i].Stage]++
	}
	return counts
}
