package population

import "github.com/roach88/episim/internal/agent"

// Summary is the demographic and stage breakdown printed before and after a
// run. Not computed on the per-step path.
type Summary struct {
	Size       int                  `json:"size"`
	Males      int                  `json:"males"`
	Females    int                  `json:"females"`
	Youngest   float64              `json:"youngest"`
	Oldest     float64              `json:"oldest"`
	AverageAge float64              `json:"average_age"`
	Stages     [agent.NumStages]int `json:"stages"`
}

// Summary reduces the population to a Summary.
func (p *Population) Summary() Summary {
	s := Summary{
		Size:     len(p.agents),
		Youngest: p.agents[0].Age,
		Oldest:   p.agents[0].Age,
	}
	total := 0.0
	for i := range p.agents {
		a := &p.agents[i]
		if a.Sex == agent.Male {
			s.Males++
		} else {
			s.Females++
		}
		total += a.Age
		if a.Age < s.Youngest {
			s.Youngest = a.Age
		}
		if a.Age > s.Oldest {
			s.Oldest = a.Age
		}
		s.Stages[a.Stage]++
	}
	s.AverageAge = total / float64(len(p.agents))
	return s
}
