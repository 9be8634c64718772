package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/store"
)

const cityBundle = `entities:
  - iri: http://localhost/wiki/Special:URIResolver/Berlin
    title: Berlin
  - title: Category:Cities
labels:
  Has population: Population
concepts:
  - title: Big cities
    definition:
      and:
        - class: Cities
        - property: Has population
          value: {comparator: ">=", literal: "1000000", datatype: xsd:integer}
`

func TestImport_Text(t *testing.T) {
	opts := testRootOptions(t, "text")
	dir := t.TempDir()
	path := writeFile(t, dir, "bundle.yaml", cityBundle)

	buf := &bytes.Buffer{}
	cmd := NewImportCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ Imported 2 entities, 1 labels, 1 concepts")

	st, err := store.Open(opts.Config.Database)
	require.NoError(t, err)
	defer st.Close()

	id, ok, err := st.Resolve(context.Background(), "http://localhost/wiki/Special:URIResolver/Berlin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ir.NewEntityID(ir.NSMain, "Berlin"), id)
	assert.Equal(t, "Population", st.Label("Has_population"))
}

func TestImport_JSONMultipleFiles(t *testing.T) {
	opts := testRootOptions(t, "json")
	dir := t.TempDir()
	first := writeFile(t, dir, "a.yaml", cityBundle)
	second := writeFile(t, dir, "b.yaml", "labels:\n  Has area: Area\n")

	buf := &bytes.Buffer{}
	cmd := NewImportCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{first, second})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string       `json:"status"`
		Data   ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, opts.Config.Database, resp.Data.Database)
	assert.Equal(t, store.ImportStats{Entities: 2, Labels: 2, Concepts: 1}, resp.Data.Stats)
}

func TestImport_InvalidBundle(t *testing.T) {
	opts := testRootOptions(t, "text")
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "entities:\n  - iri: http://example.org/x\n")

	buf := &bytes.Buffer{}
	cmd := NewImportCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error ["+ErrCodeImport+"]")
	assert.Contains(t, buf.String(), "missing title")
}
