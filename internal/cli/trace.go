package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/episim/internal/report"
	"github.com/roach88/episim/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database   string
	RunID      string
	List       bool
	Incomplete bool
}

// TraceResult holds a stored run and its step reports.
type TraceResult struct {
	Run   store.RunInfo       `json:"run"`
	Steps []report.StepReport `json:"steps"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show stored runs and their step reports",
		Long: `Read runs recorded with "episim run --db".

With --run, prints the run's configuration and its step reports in the same
line format as the run command. With --list, lists every stored run; add
--incomplete to show only runs that stopped early.

Examples:
  episim trace --db ./trace.db --list
  episim trace --db ./trace.db --run 01890a5d-ac96-774b-bcce-b302099a8057
  episim trace --db ./trace.db --run 01890a5d-ac96-774b-bcce-b302099a8057 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to show")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list stored runs")
	cmd.Flags().BoolVar(&opts.Incomplete, "incomplete", false, "with --list, only runs that stopped early")
	cmd.MarkFlagsMutuallyExclusive("run", "list")
	cmd.MarkFlagsOneRequired("run", "list")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.List {
		return listRuns(ctx, opts, st, cmd)
	}

	run, err := st.GetRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		if opts.Format == "json" {
			if werr := writeJSON(cmd, CLIResponse{
				Status: "error",
				Error: &CLIError{
					Code:    ErrCodeRunNotFound,
					Message: fmt.Sprintf("run %s not found", opts.RunID),
				},
			}); werr != nil {
				return werr
			}
		}
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	steps, err := st.ReadSteps(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	result := TraceResult{Run: run, Steps: steps}
	if opts.Format == "json" {
		return writeJSON(cmd, CLIResponse{Status: "ok", Data: result})
	}
	return outputTraceText(cmd, result)
}

func listRuns(ctx context.Context, opts *TraceOptions, st *store.Store, cmd *cobra.Command) error {
	var (
		runs []store.RunInfo
		err  error
	)
	if opts.Incomplete {
		runs, err = st.FindIncompleteRuns(ctx)
	} else {
		runs, err = st.ListRuns(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd, CLIResponse{Status: "ok", Data: runs})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}
	for _, run := range runs {
		status := "completed"
		steps := fmt.Sprint(run.Steps)
		if !run.Completed {
			status = "incomplete"
			last, err := st.LastStep(ctx, run.ID)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read steps", err)
			}
			steps = fmt.Sprintf("%d/%d", last+1, run.Steps)
		}
		fmt.Fprintf(w, "%s  %-10s agents=%d steps=%s seed=%d/%d",
			run.ID, status, run.Agents, steps, run.Seed.General, run.Seed.Geometric)
		if run.Label != "" {
			fmt.Fprintf(w, " label=%q", run.Label)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// outputTraceText prints the run header then the stored step lines.
func outputTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()
	run := result.Run

	fmt.Fprintf(w, "Run: %s\n", run.ID)
	if run.Label != "" {
		fmt.Fprintf(w, "Label: %s\n", run.Label)
	}
	fmt.Fprintf(w, "Seed: %d/%d\n", run.Seed.General, run.Seed.Geometric)
	fmt.Fprintf(w, "Agents: %d\n", run.Agents)
	fmt.Fprintf(w, "Steps: %d/%d", len(result.Steps), run.Steps)
	if !run.Completed {
		fmt.Fprint(w, " (incomplete)")
	}
	fmt.Fprintln(w)

	out := report.NewText(w)
	for _, r := range result.Steps {
		if err := out.Report(cmd.Context(), r); err != nil {
			return err
		}
	}
	return nil
}
