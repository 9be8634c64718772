package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/store"
)

const compilePrefixes = "PREFIX property: <http://localhost/wiki/Special:URIResolver/Property-3A>\n" +
	"PREFIX wiki: <http://localhost/wiki/Special:URIResolver/>\n" +
	"PREFIX swivt: <http://semantic-mediawiki.org/swivt/1.0#>\n" +
	"PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>\n" +
	"PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>\n" +
	"PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>\n"

func TestCompile_Text(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", "description:\n  property: Has population\nlimit: 10\noffset: 20\n")

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(testRootOptions(t, "text"))
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	want := compilePrefixes +
		"SELECT DISTINCT ?result\n" +
		"WHERE {\n" +
		"?result property:Has_population ?v1 .\n" +
		"}\n" +
		"LIMIT 11\n" +
		"OFFSET 20\n"
	assert.Equal(t, want, buf.String())
}

func TestCompile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", citiesQuery)

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(testRootOptions(t, "json"))
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--mode", "count", path})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "count", resp.Data.Mode)
	assert.Contains(t, resp.Data.SPARQL, "SELECT (COUNT(DISTINCT ?result) AS ?count)")
	assert.NotContains(t, resp.Data.SPARQL, "LIMIT")
	assert.Empty(t, resp.Data.Errors)
}

func TestCompile_SortFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", "description:\n  class: Cities\n")

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(testRootOptions(t, "text"))
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--sort", "-Has population", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "OPTIONAL { ?result property:Has_population ?v1 . }")
	assert.Contains(t, buf.String(), "ORDER BY DESC(?v1)")
}

func TestCompile_OutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", citiesQuery)
	out := filepath.Join(dir, "q.rq")

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(testRootOptions(t, "text"))
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-o", out, path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ Compiled")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SELECT DISTINCT ?result")
}

func TestCompile_UsesStoredConcepts(t *testing.T) {
	opts := testRootOptions(t, "text")
	dir := t.TempDir()

	st, err := store.Open(opts.Config.Database)
	require.NoError(t, err)
	bundle := writeFile(t, dir, "bundle.yaml", `concepts:
  - title: Big cities
    definition:
      property: Has population
`)
	_, err = st.ImportFile(context.Background(), bundle, ir.DefaultVocabulary())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	path := writeFile(t, dir, "q.yaml", "description:\n  concept: Big cities\n")

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "?result property:Has_population ?v1 .")
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		args     []string
		wantCode string
		wantExit int
	}{
		{
			name:     "missing_description",
			content:  "mode: count\n",
			wantCode: ErrCodeLoadFailed,
			wantExit: ExitCommandError,
		},
		{
			name:     "two_variants",
			content:  "description:\n  class: Cities\n  concept: Big cities\n",
			wantCode: ErrCodeInvalidQuery,
			wantExit: ExitFailure,
		},
		{
			name:     "unknown_mode",
			content:  "description:\n  class: Cities\nmode: everything\n",
			wantCode: ErrCodeInvalidMode,
			wantExit: ExitFailure,
		},
		{
			name:     "unknown_mode_flag",
			content:  "description:\n  class: Cities\n",
			args:     []string{"--mode", "bogus"},
			wantCode: ErrCodeInvalidMode,
			wantExit: ExitFailure,
		},
		{
			name:     "bad_sort_order",
			content:  "description:\n  class: Cities\nsort:\n  - property: Has population\n    order: sideways\n",
			wantCode: ErrCodeInvalidSort,
			wantExit: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "q.yaml", tt.content)

			buf := &bytes.Buffer{}
			cmd := NewCompileCommand(testRootOptions(t, "json"))
			cmd.SetOut(buf)
			cmd.SetArgs(append(tt.args, path))

			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestCompile_MissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(testRootOptions(t, "text"))
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error ["+ErrCodeNotFound+"]")
}
