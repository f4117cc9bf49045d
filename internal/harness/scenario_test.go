package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/episim/internal/config"
	"github.com/roach88/episim/internal/rng"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: basic
description: "basic scenario"
run:
  agents: 10
seeds:
  - {general: 1, geometric: 2}
assertions:
  - type: step_count
    count: 730
  - type: prevalence_bounds
    max: 0.5
`))
	require.NoError(t, err)

	assert.Equal(t, "basic", s.Name)
	assert.Equal(t, []rng.Seed{{General: 1, Geometric: 2}}, s.Seeds)
	require.Len(t, s.Assertions, 2)
	require.NotNil(t, s.Assertions[0].Count)
	assert.Equal(t, 730, *s.Assertions[0].Count)

	lo, hi := s.Assertions[1].bounds()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.5, hi)

	cfg, err := s.ResolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Agents)
	assert.Equal(t, config.Default().Parameters, cfg.Parameters)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "assertions: [{type: dates_increasing}]\n",
			wantErr: "name is required",
		},
		{
			name:    "no assertions",
			yaml:    "name: x\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown field",
			yaml:    "name: x\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\nassertions: [{type: nope}]\n",
			wantErr: `unknown assertion type "nope"`,
		},
		{
			name:    "missing type",
			yaml:    "name: x\nassertions: [{count: 3}]\n",
			wantErr: "type is required",
		},
		{
			name:    "step_count without count",
			yaml:    "name: x\nassertions: [{type: step_count}]\n",
			wantErr: "count is required",
		},
		{
			name:    "negative count",
			yaml:    "name: x\nassertions: [{type: step_count, count: -1}]\n",
			wantErr: "count must be non-negative",
		},
		{
			name:    "inverted bounds",
			yaml:    "name: x\nassertions: [{type: prevalence_bounds, min: 0.6, max: 0.4}]\n",
			wantErr: "exceeds max",
		},
		{
			name:    "config and run",
			yaml:    "name: x\nconfig: a.yaml\nrun: {agents: 3}\nassertions: [{type: dates_increasing}]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "run not a mapping",
			yaml:    "name: x\nrun: [1, 2]\nassertions: [{type: dates_increasing}]\n",
			wantErr: "run must be a mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveConfig_Default(t *testing.T) {
	s, err := ParseScenario([]byte("name: x\nassertions: [{type: dates_increasing}]\n"))
	require.NoError(t, err)

	cfg, err := s.ResolveConfig()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestResolveConfig_InlineRunIsStrict(t *testing.T) {
	s, err := ParseScenario([]byte("name: x\nrun: {agnets: 3}\nassertions: [{type: dates_increasing}]\n"))
	require.NoError(t, err)

	_, err = s.ResolveConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run block")
}

func TestLoadScenario_ResolvesConfigPath(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "run.yaml", "agents: 7\n")
	path := writeScenario(t, dir, "s.yaml",
		"name: x\nconfig: run.yaml\nassertions: [{type: dates_increasing}]\n")

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run.yaml"), s.Config)

	cfg, err := s.ResolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Agents)
}

func TestLoadScenario_MissingConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "s.yaml",
		"name: x\nconfig: nope.yaml\nassertions: [{type: dates_increasing}]\n")

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
