package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wikisparql/internal/harness"
)

const debugScenario = `name: cities_debug
description: "DEBUG mode compiles without a request"
query_id: q-debug
query:
  description:
    class: Cities
  mode: debug
assertions:
  - type: requests
    count: 0
  - type: sparql_contains
    text: "?result rdf:type wiki:Category-3ACities"
`

const failingScenario = `name: cities_failing
description: "An assertion that cannot hold"
query:
  description:
    class: Cities
  mode: debug
assertions:
  - type: sparql_contains
    text: "ORDER BY"
`

func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	output, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "Error ["+ErrCodeNotFound+"]")
}

func TestTestCommandEmptyDir(t *testing.T) {
	output, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, output, "No scenarios found")
}

func TestTestCommandEmptyDirJSON(t *testing.T) {
	output, err := runTestCommand(t, "json", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string              `json:"status"`
		Data   harness.SuiteResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
}

func TestTestCommandPassing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "debug.yaml", debugScenario)

	output, err := runTestCommand(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ cities_debug")
	assert.Contains(t, output, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, output, "✓ All scenarios passed")
}

func TestTestCommandFailing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "debug.yaml", debugScenario)
	writeFile(t, dir, "failing.yaml", failingScenario)

	output, err := runTestCommand(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string              `json:"status"`
		Data   harness.SuiteResult `json:"data"`
		Error  *CLIError           `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "debug.yaml", debugScenario)
	writeFile(t, dir, "failing.yaml", failingScenario)

	output, err := runTestCommand(t, "text", "--filter", "deb*", dir)
	require.NoError(t, err)
	assert.Contains(t, output, "1 total")
}

func TestTestCommandGolden(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := writeFile(t, dir, "debug.yaml", debugScenario)
	goldenPath := filepath.Join(dir, "golden", "debug.golden")

	output, err := runTestCommand(t, "text", "--update", dir)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ cities_debug (golden updated)")

	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scenario: cities_debug\nquery_id: q-debug\nmode: debug\n--- debug\n")

	// The golden directory is not scanned for scenarios.
	output, err = runTestCommand(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, output, "1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(goldenPath, []byte("stale\n"), 0644))
	output, err = runTestCommand(t, "text", scenarioPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "snapshot does not match golden file")
}
