// Package engine implements the time-stepped simulation loop.
//
// ARCHITECTURE:
//
// Single-Threaded Step Loop:
// The engine advances the population one step at a time in a single goroutine.
// This ensures:
// - Identical output for identical seeds and parameters
// - No cross-agent aliasing during a step
// - Simple reasoning about what each agent observed
//
// Step Processing Flow:
// 1. Shuffle the population's iteration order
// 2. Compute prevalence once; every agent in the step sees this frozen value
// 3. For each agent in shuffled order: InfectionEvent, then AgeEvent(TimeStep)
// 4. Emit a StepReport dated StartDate + step/365.25 carrying the POST-step
//    infected count and prevalence
//
// Decisions use pre-step prevalence and reports carry post-step prevalence.
//
// State Machine:
//
//	NotStarted -> Running(step) -> Completed
//
// Run checks its context between steps. A cancelled run returns ctx.Err()
// with the clock at the next step, and Run with a fresh context resumes it.
// A run with NumIterations <= 0 goes straight to Completed without emitting
// reports.
//
// CRITICAL PATTERNS:
//
// Explicit Randomness:
// All draws come from the Source passed to New. There is no package-level
// generator, so simulations in one process are independent.
//
// Logical Step Clock:
// The step index comes from Clock, never from wall time.
package engine
