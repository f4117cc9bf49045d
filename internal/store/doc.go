// Package store provides SQLite-backed storage for simulation traces.
//
// A trace is what a run reported: one row per run with its configuration and
// one row per step report. Agent state is never stored, so a trace can be
// audited and compared but not resumed.
//
// # Tables
//
//   - runs: run ID, label, seed pair, parameters, population size, step count
//   - steps: the step reports of each run, keyed by (run_id, step)
//
// # Ordering
//
// Runs are listed in insertion order (rowid). Steps are always read
// ORDER BY step ASC, so a trace reads back in the order it was reported.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Labels are NFC-normalized on write so visually identical labels compare
// equal.
package store
