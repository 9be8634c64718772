package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Instances(t *testing.T) {
	srv, last := sparqlServer(t, citiesXML)
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", citiesQuery)

	stdout, stderr, err := runRoot(t, "--endpoint", srv.URL, "--database", dir+"/none.db", "query", path)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "Berlin")
	assert.Contains(t, stdout, "Paris")
	assert.NotContains(t, stdout, "Rome", "the row past the limit only signals further results")
	assert.Contains(t, stdout, "(2 rows)")
	assert.Contains(t, stdout, "further results available")

	require.NotNil(t, last.Load())
	assert.Contains(t, *last.Load(), "LIMIT 3\n")
	assert.Contains(t, *last.Load(), "?result rdf:type wiki:Category-3ACities")
}

func TestQuery_Count(t *testing.T) {
	srv, last := sparqlServer(t, countXML)
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", citiesQuery)

	stdout, _, err := runRoot(t, "--endpoint", srv.URL, "--database", dir+"/none.db", "query", "--mode", "count", path)
	require.NoError(t, err)

	assert.Equal(t, "42\n", stdout)
	require.NotNil(t, last.Load())
	assert.Contains(t, *last.Load(), "SELECT (COUNT(DISTINCT ?result) AS ?count)")
}

func TestQuery_JSON(t *testing.T) {
	srv, _ := sparqlServer(t, citiesXML)
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", citiesQuery)

	stdout, _, err := runRoot(t, "--format", "json", "--endpoint", srv.URL, "--database", dir+"/none.db", "query", path)
	require.NoError(t, err)

	var resp struct {
		Status  string `json:"status"`
		QueryID string `json:"query_id"`
		Data    struct {
			Mode  string `json:"mode"`
			Items []struct {
				Namespace int    `json:"namespace"`
				Title     string `json:"title"`
			} `json:"items"`
			FurtherResults bool `json:"further_results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.QueryID)
	assert.Equal(t, "instances", resp.Data.Mode)
	require.Len(t, resp.Data.Items, 2)
	assert.Equal(t, "Berlin", resp.Data.Items[0].Title)
	assert.True(t, resp.Data.FurtherResults)
}

func TestQuery_Debug(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", citiesQuery)

	// No endpoint needed.
	stdout, _, err := runRoot(t, "--database", dir+"/none.db", "query", "--mode", "debug", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "SELECT DISTINCT ?result\n")
	assert.Contains(t, stdout, "LIMIT 3\n")
}

func TestQuery_NoEndpoint(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", citiesQuery)

	stdout, _, err := runRoot(t, "--database", dir+"/none.db", "query", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error ["+ErrCodeNoEndpoint+"]")
}

func TestQuery_EndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", citiesQuery)

	stdout, stderr, err := runRoot(t, "--endpoint", srv.URL, "--database", dir+"/none.db", "query", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "(0 rows)")
	assert.Contains(t, stderr, "ENDPOINT_UNREACHABLE")
}

func TestQuery_Cache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/sparql-results+xml")
		_, _ = w.Write([]byte(countXML))
	}))
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	path := writeFile(t, dir, "q.yaml", citiesQuery)
	cacheDir := t.TempDir()

	for n := 0; n < 2; n++ {
		stdout, _, err := runRoot(t, "--endpoint", srv.URL, "--database", dir+"/none.db",
			"--cache", "--cache-dir", cacheDir, "query", "--mode", "count", path)
		require.NoError(t, err)
		assert.Equal(t, "42\n", stdout)
	}
	assert.Equal(t, int32(1), hits.Load(), "second run must be answered from the cache")
}

func TestParseSortFlags(t *testing.T) {
	keys := ParseSortFlags([]string{"Has population", "-Property:Has area", "-"})

	require.Len(t, keys, 3)
	assert.Equal(t, "Has_population", string(keys[0].Property))
	assert.False(t, keys[0].Descending)
	assert.Equal(t, "Has_area", string(keys[1].Property))
	assert.True(t, keys[1].Descending)
	assert.Empty(t, keys[2].Property)
	assert.True(t, keys[2].Descending)
}
