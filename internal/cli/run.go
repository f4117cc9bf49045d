package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/episim/internal/config"
	"github.com/roach88/episim/internal/engine"
	"github.com/roach88/episim/internal/population"
	"github.com/roach88/episim/internal/report"
	"github.com/roach88/episim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	sim      simFlags
	Database string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Run a simulation and print its output.

Output is the population summary, one line per step, then the summary again.
With --format json every record is one JSON object per line. Logs go to stderr.

With --db the run's configuration and step reports are also recorded in a
SQLite trace database under a new run ID, for later trace and replay.

Examples:
  episim run
  episim run --config run.yaml --seed 7
  episim run --agents 1000 --years 5 --force-infection 0.2
  episim run --db ./trace.db --label baseline`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}

	opts.sim.bind(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runSimulation(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := opts.sim.resolve(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	src := cfg.Source()
	pop, err := population.New(cfg.Agents, src)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	out := newRenderer(opts.Format, cmd.OutOrStdout())
	var reporter report.Reporter = out
	var engineOpts []engine.Option
	if cfg.Strict {
		engineOpts = append(engineOpts, engine.WithStrict())
	}

	var rec *store.Recorder
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		runIDs := opts.RunIDs
		if runIDs == nil {
			runIDs = engine.UUIDv7Generator{}
		}
		rec, err = st.StartRun(ctx, runInfo(runIDs.Generate(), cfg))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		reporter = report.Tee(out, rec)
		engineOpts = append(engineOpts, engine.WithRunID(rec.RunID()))
		slog.Info("recording run", "db", opts.Database, "run_id", rec.RunID())
	}

	eng, err := engine.New(pop, cfg.Parameters, src, reporter, engineOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	if err := out.Summary(report.PhaseBefore, pop.Summary()); err != nil {
		return WrapExitError(ExitFailure, "write output", err)
	}
	if err := eng.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return WrapExitError(ExitFailure, "simulation interrupted", err)
		}
		return WrapExitError(ExitFailure, "simulation failed", err)
	}
	if err := out.Summary(report.PhaseAfter, pop.Summary()); err != nil {
		return WrapExitError(ExitFailure, "write output", err)
	}

	if rec != nil {
		if err := rec.Finish(ctx); err != nil {
			return WrapExitError(ExitFailure, "failed to finish run", err)
		}
	}
	return nil
}

// runInfo describes a run of cfg for the trace store.
func runInfo(id string, cfg config.Config) store.RunInfo {
	return store.RunInfo{
		ID:         id,
		Label:      cfg.Label,
		Seed:       cfg.Seed,
		Parameters: cfg.Parameters,
		Agents:     cfg.Agents,
		Steps:      cfg.Parameters.NumIterations(),
	}
}

// signalContext returns the command's context, cancelled on SIGINT or
// SIGTERM so a long run stops between steps.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
}
