package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/episim/internal/engine"
	"github.com/roach88/episim/internal/rng"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, engine.DefaultParameters(), cfg.Parameters)
	assert.Equal(t, DefaultAgents, cfg.Agents)
	assert.Equal(t, rng.DefaultSeeds(), cfg.Seed)
	assert.False(t, cfg.Strict)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 730, cfg.Parameters.NumIterations())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
parameters:
  num_years: 5
  force_infection: 0.2
agents: 250
seed:
  general: 7
  geometric: 11
label: five years
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Parameters.NumYears)
	assert.Equal(t, 0.2, cfg.Parameters.ForceInfection)
	assert.Equal(t, 250, cfg.Agents)
	assert.Equal(t, rng.Seed{General: 7, Geometric: 11}, cfg.Seed)
	assert.Equal(t, "five years", cfg.Label)

	// Untouched fields keep their defaults.
	def := engine.DefaultParameters()
	assert.Equal(t, def.TimeStep, cfg.Parameters.TimeStep)
	assert.Equal(t, def.StartDate, cfg.Parameters.StartDate)
	assert.Equal(t, def.ProbNewPartner, cfg.Parameters.ProbNewPartner)
}

func TestLoad_YMLExtension(t *testing.T) {
	path := writeFile(t, "run.yml", "agents: 3\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Agents)
}

func TestParseYAML_Empty(t *testing.T) {
	cfg, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseYAML_UnknownField(t *testing.T) {
	_, err := ParseYAML([]byte("agent: 10\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent")
}

func TestParseYAML_StepsPerYear(t *testing.T) {
	cfg, err := ParseYAML([]byte("steps_per_year: 12\nparameters:\n  time_step: 0.5\n"))
	require.NoError(t, err)
	assert.InDelta(t, 1.0/12, cfg.Parameters.TimeStep, 1e-15)
	assert.Equal(t, 24, cfg.Parameters.NumIterations())
}

func TestLoad_CUE(t *testing.T) {
	path := writeFile(t, "run.cue", `
parameters: {
	num_years: 1
	time_step: 1 / 365.25
}
agents: 40
seed: general: 99
strict: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Parameters.NumYears)
	assert.InDelta(t, 1/engine.DaysPerYear, cfg.Parameters.TimeStep, 1e-15)
	assert.Equal(t, 40, cfg.Agents)
	assert.Equal(t, uint64(99), cfg.Seed.General)
	assert.Equal(t, rng.DefaultSeed, cfg.Seed.Geometric)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 2015.0, cfg.Parameters.StartDate)
}

func TestParseCUE_SchemaViolations(t *testing.T) {
	tests := map[string]string{
		"zero time step":  "parameters: time_step: 0\n",
		"no agents":       "agents: 0\n",
		"fractional size": "agents: 1.5\n",
		"unknown field":   "agnets: 10\n",
		"negative seed":   "seed: general: -1\n",
		"wrong type":      "label: 3\n",
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCUE("bad.cue", []byte(src))
			require.Error(t, err)
		})
	}
}

func TestParseCUE_SyntaxError(t *testing.T) {
	_, err := ParseCUE("broken.cue", []byte("agents: {\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUE")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "run.toml", "agents = 3\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported extension")
	})

	t.Run("malformed YAML names the file", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "agents: [\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   engine.ConfigErrorCode
	}{
		{"no agents", func(c *Config) { c.Agents = 0 }, engine.ErrCodeEmptyPopulation},
		{"negative agents", func(c *Config) { c.Agents = -4 }, engine.ErrCodeEmptyPopulation},
		{"zero time step", func(c *Config) { c.Parameters.TimeStep = 0 }, engine.ErrCodeNonPositiveTimeStep},
		{"negative steps per year", func(c *Config) { c.StepsPerYear = -1 }, engine.ErrCodeNonPositiveTimeStep},
		{"strict probability", func(c *Config) {
			c.Strict = true
			c.Parameters.ForceInfection = 1.5
		}, engine.ErrCodeProbabilityOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.code, engine.ConfigErrorCodeOf(err))
		})
	}
}

func TestValidate_LenientProbability(t *testing.T) {
	cfg := Default()
	cfg.Parameters.ForceInfection = 1.5
	assert.NoError(t, cfg.Validate())
}

func TestSource_UsesSeed(t *testing.T) {
	cfg := Default()
	cfg.Seed = rng.Seed{General: 5, Geometric: 6}

	assert.Equal(t, cfg.Seed, cfg.Source().Seed())

	a, b := cfg.Source(), cfg.Source()
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}
