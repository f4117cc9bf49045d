package testutil

import "fmt"

// ScriptedSource returns predetermined draws so tests can force exact
// infection outcomes.
//
// Float64 returns the scripted values in order and panics when they run out,
// which catches tests that take more draws than they expected. Shuffle keeps
// the current order. The construction draws return fixed values.
//
// Not safe for concurrent use.
type ScriptedSource struct {
	floats []float64
	idx    int
	Sex    int
	Age    float64
	Trials int
}

// NewScriptedSource creates a source that yields floats from Float64.
func NewScriptedSource(floats ...float64) *ScriptedSource {
	return &ScriptedSource{floats: floats, Age: 15, Trials: 1}
}

// Float64 returns the next scripted value.
func (s *ScriptedSource) Float64() float64 {
	if s.idx >= len(s.floats) {
		panic(fmt.Sprintf("ScriptedSource: all %d draws exhausted", len(s.floats)))
	}
	v := s.floats[s.idx]
	s.idx++
	return v
}

// Draws returns how many Float64 values have been consumed.
func (s *ScriptedSource) Draws() int {
	return s.idx
}

// UniformInt returns the configured Sex value.
func (s *ScriptedSource) UniformInt(low, high int) int {
	return s.Sex
}

// UniformReal returns the configured Age value.
func (s *ScriptedSource) UniformReal(low, high float64) float64 {
	return s.Age
}

// Geometric returns the configured Trials value.
func (s *ScriptedSource) Geometric(p float64) int {
	return s.Trials
}

// Shuffle leaves the order unchanged.
func (s *ScriptedSource) Shuffle(n int, swap func(i, j int)) {}
