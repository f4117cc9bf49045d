package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/episim/internal/agent"
	"github.com/roach88/episim/internal/population"
)

// Phase labels a diagnostic block.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// Renderer is a Reporter that can also emit the pre/post diagnostic blocks.
type Renderer interface {
	Reporter
	Summary(phase Phase, s population.Summary) error
}

// Text writes the human-readable line format:
//
//	2015.0027378507871 Num infected: 3 Prevalence: 0.03
type Text struct {
	w io.Writer
}

// NewText creates a Text renderer writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Report writes one step line.
func (t *Text) Report(_ context.Context, r StepReport) error {
	_, err := fmt.Fprintln(t.w, FormatLine(r))
	if err != nil {
		return fmt.Errorf("write step %d: %w", r.Step, err)
	}
	return nil
}

// Summary writes a diagnostic block. The phase is not printed so that blocks
// from an unchanged population compare equal.
func (t *Text) Summary(_ Phase, s population.Summary) error {
	ew := &errWriter{w: t.w}
	ew.printf("Males: %d\n", s.Males)
	ew.printf("Females: %d\n", s.Females)
	ew.printf("Youngest: %s\n", FormatFloat(s.Youngest))
	ew.printf("Oldest: %s\n", FormatFloat(s.Oldest))
	ew.printf("Average age: %s\n", FormatFloat(s.AverageAge))
	for stage := 0; stage < agent.NumStages; stage++ {
		ew.printf("Stage %d: %d\n", stage, s.Stages[stage])
	}
	if ew.err != nil {
		return fmt.Errorf("write summary: %w", ew.err)
	}
	return nil
}

// JSON writes one JSON object per line.
type JSON struct {
	enc *json.Encoder
}

type jsonRecord struct {
	Type    string              `json:"type"`
	Phase   Phase               `json:"phase,omitempty"`
	Step    *StepReport         `json:"step,omitempty"`
	Summary *population.Summary `json:"summary,omitempty"`
}

// NewJSON creates a JSON-lines renderer writing to w.
func NewJSON(w io.Writer) *JSON {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSON{enc: enc}
}

// Report writes {"type":"step","step":{...}}.
func (j *JSON) Report(_ context.Context, r StepReport) error {
	if err := j.enc.Encode(jsonRecord{Type: "step", Step: &r}); err != nil {
		return fmt.Errorf("write step %d: %w", r.Step, err)
	}
	return nil
}

// Summary writes {"type":"summary","phase":...,"summary":{...}}.
func (j *JSON) Summary(phase Phase, s population.Summary) error {
	if err := j.enc.Encode(jsonRecord{Type: "summary", Phase: phase, Summary: &s}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// Tee forwards each report to every reporter in order, stopping at the first
// error. Nil reporters are skipped.
func Tee(reporters ...Reporter) Reporter {
	var rs []Reporter
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return ReporterFunc(func(ctx context.Context, sr StepReport) error {
		for _, r := range rs {
			if err := r.Report(ctx, sr); err != nil {
				return err
			}
		}
		return nil
	})
}

// errWriter keeps the first write error so a block can be written without
// checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
