package engine

import "sync/atomic"

// Clock counts completed simulation steps.
//
// The engine reads the current step index from Current and advances it with
// Next once a step's mutations are done. Dates are derived from this counter,
// never from wall time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations), so
// progress can be polled from another goroutine. Only the engine advances it.
type Clock struct {
	step atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next advances the clock and returns the new number of completed steps.
func (c *Clock) Next() int64 {
	return c.step.Add(1)
}

// Current returns the number of completed steps, which is also the index of
// the next step to run.
func (c *Clock) Current() int64 {
	return c.step.Load()
}
