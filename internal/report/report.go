// Package report renders simulation output for an observer.
//
// A Reporter receives one StepReport per simulated step. Reporters write to an
// io.Writer (text, JSON lines), fan out to several sinks (Tee), or record into
// the SQLite trace store (see internal/store). A write failure is returned to
// the engine, which aborts the run.
package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// StepReport is the observable outcome of one step.
//
// Infected and Prevalence are measured after the step's mutations, even though
// the step's infection decisions used the prevalence from before the step.
type StepReport struct {
	Step       int     `json:"step"`
	Date       float64 `json:"date"`
	Infected   int     `json:"infected"`
	Prevalence float64 `json:"prevalence"`
	Size       int     `json:"size"`
}

// Reporter receives step reports in step order.
type Reporter interface {
	Report(ctx context.Context, r StepReport) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, r StepReport) error

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, r StepReport) error {
	return f(ctx, r)
}

// Discard drops every report.
var Discard Reporter = ReporterFunc(func(context.Context, StepReport) error { return nil })

// FormatFloat renders a float as the shortest decimal that round-trips,
// always keeping a fractional part ("2015.0", "0.03").
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// FormatLine renders r as one line of text output, without the newline.
func FormatLine(r StepReport) string {
	return fmt.Sprintf("%s Num infected: %d Prevalence: %s",
		FormatFloat(r.Date), r.Infected, FormatFloat(r.Prevalence))
}
