package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/episim/internal/agent"
	"github.com/roach88/episim/internal/config"
	"github.com/roach88/episim/internal/rng"
)

// Scenario defines one harness check: a configuration, optional seeds and
// population, and the assertions every trial must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is a path to a .yaml or .cue config file.
	// Relative paths are resolved against the scenario file's directory.
	Config string `yaml:"config,omitempty"`

	// Run is an inline config with the same fields as a YAML config file.
	// Mutually exclusive with Config.
	Run yaml.Node `yaml:"run,omitempty"`

	// Population replaces the drawn population with explicit agents.
	Population []agent.Agent `yaml:"population,omitempty"`

	// Seeds lists the seed pairs to run. Empty means the config's seed.
	Seeds []rng.Seed `yaml:"seeds,omitempty"`

	// Assertions are checked against every trial.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of a trial.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected number of step reports (step_count).
	Count *int `yaml:"count,omitempty"`

	// Min and Max bound every prevalence (prevalence_bounds).
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

// Assertion type constants.
const (
	AssertStepCount                   = "step_count"
	AssertFinalInfectedAtLeastInitial = "final_infected_at_least_initial"
	AssertInfectedConstant            = "infected_constant"
	AssertInfectedNondecreasing       = "infected_nondecreasing"
	AssertPrevalenceBounds            = "prevalence_bounds"
	AssertDatesIncreasing             = "dates_increasing"
	AssertPopulationConserved         = "population_conserved"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative Config path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
	}
	if scenario.Config != "" {
		if _, err := os.Stat(scenario.Config); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: config file not found: %s", scenario.Config)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Config paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ResolveConfig returns the scenario's run configuration: the config file,
// the inline run block, or config.Default when neither is given.
func (s *Scenario) ResolveConfig() (config.Config, error) {
	switch {
	case s.Config != "":
		return config.Load(s.Config)
	case s.hasInlineRun():
		// Re-encode the node so the inline block gets the same strict
		// decoding as a config file.
		data, err := yaml.Marshal(&s.Run)
		if err != nil {
			return config.Config{}, fmt.Errorf("encode run block: %w", err)
		}
		cfg, err := config.ParseYAML(data)
		if err != nil {
			return config.Config{}, fmt.Errorf("run block: %w", err)
		}
		return cfg, nil
	default:
		return config.Default(), nil
	}
}

func (s *Scenario) hasInlineRun() bool {
	return s.Run.Kind != 0
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Config != "" && s.hasInlineRun() {
		return fmt.Errorf("config and run are mutually exclusive")
	}

	if s.hasInlineRun() && s.Run.Kind != yaml.MappingNode {
		return fmt.Errorf("run must be a mapping")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStepCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for step_count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for step_count", index)
		}
	case AssertPrevalenceBounds:
		lo, hi := a.bounds()
		if lo > hi {
			return fmt.Errorf("assertions[%d]: min %v exceeds max %v", index, lo, hi)
		}
	case AssertFinalInfectedAtLeastInitial,
		AssertInfectedConstant,
		AssertInfectedNondecreasing,
		AssertDatesIncreasing,
		AssertPopulationConserved:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// bounds returns the prevalence bounds, defaulting to [0, 1].
func (a Assertion) bounds() (lo, hi float64) {
	lo, hi = 0, 1
	if a.Min != nil {
		lo = *a.Min
	}
	if a.Max != nil {
		hi = *a.Max
	}
	return lo, hi
}
