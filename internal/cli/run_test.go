package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/episim/internal/engine"
	"github.com/roach88/episim/internal/store"
)

func TestRun_TextOutput(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--agents", "10", "--years", "10", "--time-step", "1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2*summaryLines+10)

	assert.Equal(t, "Males: ", lines[0][:len("Males: ")])
	steps := lines[summaryLines : summaryLines+10]
	assert.True(t, strings.HasPrefix(steps[0], "2015.0 Num infected: "), steps[0])
	for _, line := range steps {
		assert.Contains(t, line, " Prevalence: ")
	}
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "Stage 5: "))
}

func TestRun_Deterministic(t *testing.T) {
	args := []string{"--agents", "50", "--years", "1", "--time-step", "0.02", "--seed", "7"}

	first, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), args...)
	require.NoError(t, err)
	second, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), args...)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_SeedChangesOutput(t *testing.T) {
	base := []string{"--agents", "50", "--years", "1", "--time-step", "0.02"}

	a, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), append(base, "--seed", "1")...)
	require.NoError(t, err)
	b, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), append(base, "--seed", "2")...)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestRun_JSONOutput(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, "--agents", "10", "--years", "3", "--time-step", "1")
	require.NoError(t, err)

	var records []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec), scanner.Text())
		records = append(records, rec)
	}
	require.Len(t, records, 5)

	assert.Equal(t, "summary", records[0]["type"])
	assert.Equal(t, "before", records[0]["phase"])
	for i, rec := range records[1:4] {
		assert.Equal(t, "step", rec["type"])
		step := rec["step"].(map[string]any)
		assert.Equal(t, float64(i), step["step"])
		assert.Equal(t, float64(10), step["size"])
	}
	assert.Equal(t, "summary", records[4]["type"])
	assert.Equal(t, "after", records[4]["phase"])
}

func TestRun_ConfigFile(t *testing.T) {
	path := writeFile(t, "run.yaml", `
parameters:
  num_years: 4
  time_step: 1
agents: 8
`)

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--config", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 2*summaryLines+4)
}

func TestRun_FlagOverridesConfigFile(t *testing.T) {
	path := writeFile(t, "run.yaml", `
parameters:
  num_years: 4
  time_step: 1
agents: 8
`)

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--config", path, "--years", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 2*summaryLines+2)
}

func TestRun_ZeroIterations(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--agents", "5", "--years", "0")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 2*summaryLines)
}

func TestRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code engine.ConfigErrorCode
	}{
		{"zero time step", []string{"--time-step", "0"}, engine.ErrCodeNonPositiveTimeStep},
		{"no agents", []string{"--agents", "0"}, engine.ErrCodeEmptyPopulation},
		{"strict probability", []string{"--strict", "--force-infection", "1.5"}, engine.ErrCodeProbabilityOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRunCommand(&RootOptions{Format: "text"})
			_, err := execute(t, cmd, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Equal(t, tt.code, engine.ConfigErrorCodeOf(err))
		})
	}
}

func TestRun_MissingConfigFile(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

// newTestRunCommand builds a run command with a fixed run ID.
func newTestRunCommand(format string, ids ...string) *cobra.Command {
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: format},
		RunIDs:      engine.NewFixedGenerator(ids...),
	}
	cmd := &cobra.Command{
		Use:           "run",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}
	opts.sim.bind(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "")
	return cmd
}

func TestRun_RecordsToDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	cmd := newTestRunCommand("text", "run-1")
	out, err := execute(t, cmd,
		"--db", dbPath, "--agents", "10", "--years", "5", "--time-step", "1",
		"--seed", "3", "--label", "baseline")
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	run, err := st.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "baseline", run.Label)
	assert.Equal(t, uint64(3), run.Seed.General)
	assert.Equal(t, 10, run.Agents)
	assert.Equal(t, 5, run.Steps)
	assert.True(t, run.Completed)

	steps, err := st.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, steps, 5)

	// The stored reports are the printed step lines.
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	for i, r := range steps {
		assert.Equal(t, i, r.Step)
		assert.Equal(t, lines[summaryLines+i], formatReportLine(&r))
	}
}

func TestRun_DatabaseOpenFailure(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, "--db", "/nonexistent/path/trace.db", "--years", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetContext(ctx)
	_, err := execute(t, cmd, "--agents", "5", "--years", "3", "--time-step", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, context.Canceled)
}
