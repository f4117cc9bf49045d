package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run := createTestRun("run-1")
	run.Seed.General = 1<<64 - 1 // does not fit a signed SQLite INTEGER
	run.Parameters.ForceInfection = 0.1 + 0.2

	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	first := createTestRun("run-1")
	second := createTestRun("run-1")
	second.Label = "overwritten"

	require.NoError(t, s.WriteRun(ctx, first))
	require.NoError(t, s.WriteRun(ctx, second))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "test", got.Label)
}

func TestWriteRun_RequiresID(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteRun(t.Context(), createTestRun(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run ID is required")
}

func TestWriteRun_RejectsEmptyPopulation(t *testing.T) {
	s := createTestStore(t)
	run := createTestRun("run-1")
	run.Agents = 0
	assert.Error(t, s.WriteRun(t.Context(), run))
}

func TestWriteRun_NormalizesLabel(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run := createTestRun("run-1")
	run.Label = "Gene\u0300ve"

	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "Gen\u00e8ve", got.Label)
}

func TestWriteStep_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	want := createTestStep(3, 7)
	require.NoError(t, s.WriteStep(ctx, "run-1", want))

	steps, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, want, steps[0])
}

func TestWriteStep_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	require.NoError(t, s.WriteStep(ctx, "run-1", createTestStep(0, 5)))
	require.NoError(t, s.WriteStep(ctx, "run-1", createTestStep(0, 9)))

	steps, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, 5, steps[0].Infected)
}

func TestWriteStep_UnknownRun(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteStep(t.Context(), "missing", createTestStep(0, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write step 0")
}

func TestFinishRun(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.WriteRun(ctx, createTestRun("run-1")))

	require.NoError(t, s.FinishRun(ctx, "run-1"))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestFinishRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	err := s.FinishRun(t.Context(), "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}
