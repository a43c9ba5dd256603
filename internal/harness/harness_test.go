package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)
		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestRunReportsMissingSubstring(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "negation.yaml"))
	require.NoError(t, err)
	scenario.Expect.Contains = append(scenario.Expect.Contains, "struct DoesNotExist {")

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not contain")
}

func TestRunRejectsUnexpectedSuccess(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "negation.yaml"))
	require.NoError(t, err)
	scenario.Expect.Contains = nil
	scenario.Expect.Error = "some diagnostic"

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile succeeded")
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	src := "name: bad\ndescription: d\nmodule: m.cue\nflow: []\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flow")
}

func TestLoadScenarioRejectsMissingModule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.yaml")
	src := "name: missing\ndescription: d\nmodule: nope.cue\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module file not found")
}

func TestLoadScenarioResolvesRelativeModulePath(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "negation.yaml"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(scenario.Module) || !os.IsPathSeparator(scenario.Module[0]))
	_, err = os.Stat(scenario.Module)
	assert.NoError(t, err)
}

func TestGoldenFailureScenarioConflict(t *testing.T) {
	dir := t.TempDir()
	modulePath := filepath.Join(dir, "m.cue")
	require.NoError(t, os.WriteFile(modulePath, []byte("functions: {}\n"), 0o644))
	path := filepath.Join(dir, "conflict.yaml")
	src := "name: conflict\ndescription: d\nmodule: m.cue\ngolden: true\nexpect:\n  error: boom\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failure scenario cannot be golden")
}
