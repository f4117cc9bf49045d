package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{
		"b.yaml",
		"a.yml",
		"notes.txt",
		"nested/c.yaml",
		"configs/run.yaml",
		"golden/a.golden",
	} {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("name: x\n"), 0o644))
	}

	files, err := FindScenarios(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, files)
}

func TestFindScenarios_Filter(t *testing.T) {
	files, err := FindScenarios(filepath.Join("testdata", "scenarios"), "no_*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("testdata", "scenarios", "no_transmission.yaml")}, files)
}

func TestFindScenarios_BadFilter(t *testing.T) {
	_, err := FindScenarios(filepath.Join("testdata", "scenarios"), "[")
	assert.Error(t, err)
}

func TestFindScenarios_MissingDir(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "missing"), "")
	assert.Error(t, err)
}
