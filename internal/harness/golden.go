package harness

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/episim/internal/report"
)

// RenderTrial writes a trial in the text output format: the before block,
// one line per step, then the after block.
func RenderTrial(w io.Writer, trial Trial) error {
	out := report.NewText(w)
	if err := out.Summary(report.PhaseBefore, trial.Before); err != nil {
		return err
	}
	for _, r := range trial.Reports {
		if err := out.Report(context.Background(), r); err != nil {
			return err
		}
	}
	return out.Summary(report.PhaseAfter, trial.After)
}

// AssertGolden compares the rendered trial against a golden file stored in
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, trial Trial) {
	t.Helper()

	var buf bytes.Buffer
	if err := RenderTrial(&buf, trial); err != nil {
		t.Fatalf("render trial: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, buf.Bytes())
}
