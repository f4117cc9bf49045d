package cli

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/roach88/episim/internal/config"
	"github.com/roach88/episim/internal/harness"
	"github.com/roach88/episim/internal/report"
	"github.com/roach88/episim/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	sim      simFlags
	Database string
	RunID    string // compare against this stored run
}

// ReplayResult holds the outcome of a determinism check.
type ReplayResult struct {
	Mode          string            `json:"mode"` // "in_process" or "stored"
	RunID         string            `json:"run_id,omitempty"`
	Steps         int               `json:"steps"`
	Compared      int               `json:"compared"`
	Deterministic bool              `json:"deterministic"`
	Divergence    *ReplayDivergence `json:"divergence,omitempty"`
}

// ReplayDivergence describes the first report that differs.
type ReplayDivergence struct {
	Index    int                `json:"index"`
	Expected *report.StepReport `json:"expected,omitempty"`
	Actual   *report.StepReport `json:"actual,omitempty"`
	Summary  string             `json:"summary,omitempty"` // set when a diagnostic block differs
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rerun a simulation and verify determinism",
		Long: `Rerun a simulation and verify that it reproduces its output exactly.

By default the configuration given by flags (or --config) is run twice in
process and the two outputs are compared. With --db and --run the stored run's
configuration is rerun and compared with its recorded step reports.

Exit codes:
  0 - Output is identical
  1 - Determinism verification failed (differences detected)
  2 - Command error (invalid config, database or run not found, etc.)

Examples:
  episim replay --seed 7 --agents 500
  episim replay --config run.cue
  episim replay --db ./trace.db --run 01890a5d-ac96-774b-bcce-b302099a8057`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	opts.sim.bind(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "stored run to verify (requires --db)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	if opts.RunID != "" && opts.Database == "" {
		return NewExitError(ExitCommandError, "--run requires --db")
	}

	var (
		result ReplayResult
		err    error
	)
	if opts.RunID != "" {
		result, err = replayStored(opts, cmd)
	} else {
		result, err = replayInProcess(opts, cmd)
	}
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result)
}

// replayInProcess runs the configuration twice and compares everything the
// run command would print.
func replayInProcess(opts *ReplayOptions, cmd *cobra.Command) (ReplayResult, error) {
	cfg, err := opts.sim.resolve(cmd)
	if err != nil {
		return ReplayResult{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	first, err := harness.RunTrial(ctx, cfg, nil, cfg.Seed)
	if err != nil {
		return ReplayResult{}, WrapExitError(ExitFailure, "first run failed", err)
	}
	second, err := harness.RunTrial(ctx, cfg, nil, cfg.Seed)
	if err != nil {
		return ReplayResult{}, WrapExitError(ExitFailure, "second run failed", err)
	}

	result := ReplayResult{
		Mode:     "in_process",
		Steps:    len(first.Reports),
		Compared: len(first.Reports),
	}
	switch {
	case first.Before != second.Before:
		result.Divergence = &ReplayDivergence{Index: -1, Summary: string(report.PhaseBefore)}
	case first.After != second.After:
		result.Divergence = &ReplayDivergence{Index: -1, Summary: string(report.PhaseAfter)}
	default:
		result.Divergence = firstDivergence(first.Reports, second.Reports)
	}
	result.Deterministic = result.Divergence == nil
	return result, nil
}

// replayStored reruns a stored run and compares it with the recorded steps.
// A run that stopped early is compared over the steps it recorded.
func replayStored(opts *ReplayOptions, cmd *cobra.Command) (ReplayResult, error) {
	ctx, stop := signalContext(cmd)
	defer stop()

	st, err := store.Open(opts.Database)
	if err != nil {
		return ReplayResult{}, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.GetRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		return ReplayResult{}, WrapExitError(ExitCommandError, "run not found", err)
	}
	if err != nil {
		return ReplayResult{}, WrapExitError(ExitCommandError, "failed to read run", err)
	}
	stored, err := st.ReadSteps(ctx, opts.RunID)
	if err != nil {
		return ReplayResult{}, WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	cfg := config.Default()
	cfg.Parameters = run.Parameters
	cfg.Seed = run.Seed
	cfg.Agents = run.Agents
	cfg.Label = run.Label

	fresh, err := harness.RunTrial(ctx, cfg, nil, cfg.Seed)
	if err != nil {
		return ReplayResult{}, WrapExitError(ExitFailure, "rerun failed", err)
	}

	actual := fresh.Reports
	if !run.Completed && len(stored) < len(actual) {
		actual = actual[:len(stored)]
	}

	result := ReplayResult{
		Mode:       "stored",
		RunID:      run.ID,
		Steps:      run.Steps,
		Compared:   len(stored),
		Divergence: firstDivergence(stored, actual),
	}
	result.Deterministic = result.Divergence == nil
	return result, nil
}

// firstDivergence returns the first index at which the sequences differ, or
// nil if they are identical.
func firstDivergence(expected, actual []report.StepReport) *ReplayDivergence {
	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		if !reflect.DeepEqual(expected[i], actual[i]) {
			return &ReplayDivergence{Index: i, Expected: &expected[i], Actual: &actual[i]}
		}
	}
	if len(expected) == len(actual) {
		return nil
	}
	d := &ReplayDivergence{Index: n}
	if n < len(expected) {
		d.Expected = &expected[n]
	}
	if n < len(actual) {
		d.Actual = &actual[n]
	}
	return d
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.Deterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeNonDeterminism,
			Message: "replay output differs",
		}
	}

	if err := writeJSON(cmd, response); err != nil {
		return err
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "determinism check failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult) error {
	w := cmd.OutOrStdout()

	source := "two in-process runs"
	if result.Mode == "stored" {
		source = "run " + result.RunID
	}

	if result.Deterministic {
		fmt.Fprintf(w, "✓ Deterministic: %d step reports identical to %s\n", result.Compared, source)
		return nil
	}

	d := result.Divergence
	if d.Summary != "" {
		fmt.Fprintf(w, "✗ Non-deterministic: %s summary differs from %s\n", d.Summary, source)
	} else {
		fmt.Fprintf(w, "✗ Non-deterministic: report %d differs from %s\n", d.Index, source)
		fmt.Fprintf(w, "  expected: %s\n", formatReportLine(d.Expected))
		fmt.Fprintf(w, "  actual:   %s\n", formatReportLine(d.Actual))
	}
	return NewExitError(ExitFailure, "determinism check failed")
}

// formatReportLine renders a report as the run command's text line, or
// "(missing)".
func formatReportLine(r *report.StepReport) string {
	if r == nil {
		return "(missing)"
	}
	return report.FormatLine(*r)
}
