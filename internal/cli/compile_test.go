package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const negationModule = `
functions: f: {
	args: [{name: "x", type: "bool"}]
	returns: "bool"
	body: [{return: {not: {ref: "x"}}}]
}
`

func writeModule(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "module.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

type compileResponse struct {
	Status string        `json:"status"`
	Data   CompileResult `json:"data"`
	Error  *CLIError     `json:"error"`
}

func TestCompileTextOutput(t *testing.T) {
	path := writeModule(t, negationModule)

	out, _, err := execute(t, "compile", path)
	require.NoError(t, err)
	assert.Contains(t, out, "#include <tmppy/tmppy.h>")
	assert.Contains(t, out, "struct F {")
}

func TestCompileJSONOutput(t *testing.T) {
	path := writeModule(t, negationModule)

	out, _, err := execute(t, "--format", "json", "compile", path)
	require.NoError(t, err)

	var resp compileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Data.Cached)
	assert.Contains(t, resp.Data.Text, "struct F {")
}

func TestCompileWritesOutputFile(t *testing.T) {
	path := writeModule(t, negationModule)
	outPath := filepath.Join(t.TempDir(), "out.h")

	out, _, err := execute(t, "compile", path, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+outPath)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "struct F {")
}

func TestCompileCacheRoundTrip(t *testing.T) {
	path := writeModule(t, negationModule)
	cachePath := filepath.Join(t.TempDir(), "cache.db")

	out, _, err := execute(t, "--format", "json", "compile", path, "--cache", cachePath)
	require.NoError(t, err)
	var first compileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.False(t, first.Data.Cached)

	out, _, err = execute(t, "--format", "json", "compile", path, "--cache", cachePath)
	require.NoError(t, err)
	var second compileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.True(t, second.Data.Cached)
	assert.Equal(t, first.Data.Text, second.Data.Text)
}

func TestCompileVerboseLogsGoToStderr(t *testing.T) {
	path := writeModule(t, negationModule)

	out, errOut, err := execute(t, "--format", "json", "--verbose", "compile", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "loaded")
	// stdout stays valid JSON.
	var resp compileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
}

func TestCompileMissingModule(t *testing.T) {
	out, _, err := execute(t, "compile", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Contains(t, out, "Error [E005]")
}

func TestCompileReportsPipelineError(t *testing.T) {
	path := writeModule(t, `
functions: only_templates: {
	args: [{name: "h", type: {fn: {args: ["type"], returns: "type"}}}]
	returns: "bool"
	body: [
		{assign: {to: "b", value: {bool: true}}},
		{assert: {cond: {ref: "b"}, message: "must hold"}},
		{return: {ref: "b"}},
	]
}
`)

	out, _, err := execute(t, "--format", "json", "compile", path)
	require.Error(t, err)

	var resp compileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCompileFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "cannot defer an assertion in only_templates")
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	path := writeModule(t, negationModule)

	_, _, err := execute(t, "--format", "yaml", "compile", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
