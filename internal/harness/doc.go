// Package harness runs simulation scenarios and checks their output against
// declared assertions.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: no_transmission
//	description: "With zero transmission nobody new is infected"
//	run:                      # inline config, same fields as a config file
//	  parameters:
//	    force_infection: 0
//	seeds:                    # optional; one trial per seed pair
//	  - {general: 1, geometric: 2}
//	  - {general: 3, geometric: 4}
//	assertions:
//	  - type: step_count
//	    count: 730
//	  - type: infected_constant
//
// Instead of run, config may name a .yaml or .cue config file, resolved
// relative to the scenario file. A population list replaces the randomly
// drawn population with explicit agents, which makes the whole trial output
// predictable:
//
//	population:
//	  - {sex: 0, age: 15, stage: 0}
//	  - {sex: 1, age: 16, stage: 2}
//
// # Assertion Types
//
//   - step_count: exactly count step reports were emitted
//   - final_infected_at_least_initial: the last report has at least as many
//     infected as the population started with
//   - infected_constant: every report has the initial infected count
//   - infected_nondecreasing: infected never falls between reports
//   - prevalence_bounds: every prevalence lies in [min, max] (default [0, 1])
//   - dates_increasing: dates rise strictly, one day per step
//   - population_conserved: size and stage totals never change
//
// # Deterministic Testing
//
// Each trial builds its own random source from its seed pair, so a scenario
// produces identical trials on every run.
package harness
