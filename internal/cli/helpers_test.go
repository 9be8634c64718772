package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/wikisparql/internal/config"
	"github.com/roach88/wikisparql/internal/endpoint"
)

const citiesQuery = `description:
  and:
    - class: Cities
    - property: Has population
mode: instances
limit: 2
`

const citiesXML = `<?xml version="1.0"?>
<sparql xmlns="http://www.w3.org/2005/sparql-results#">
  <head><variable name="result"/></head>
  <results>
    <result><binding name="result"><uri>http://localhost/wiki/Special:URIResolver/Berlin</uri></binding></result>
    <result><binding name="result"><uri>http://localhost/wiki/Special:URIResolver/Paris</uri></binding></result>
    <result><binding name="result"><uri>http://localhost/wiki/Special:URIResolver/Rome</uri></binding></result>
  </results>
</sparql>`

const countXML = `<?xml version="1.0"?>
<sparql xmlns="http://www.w3.org/2005/sparql-results#">
  <head><variable name="count"/></head>
  <results>
    <result><binding name="count"><literal datatype="http://www.w3.org/2001/XMLSchema#integer">42</literal></binding></result>
  </results>
</sparql>`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// testRootOptions returns options with a default configuration whose
// database lives in a temp dir.
func testRootOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	chdir(t, t.TempDir())
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	cfg.Database = filepath.Join(t.TempDir(), "test.db")
	cfg.Format = format
	return &RootOptions{Format: format, Config: cfg}
}

// runRoot executes the full CLI from a temp working directory.
func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// sparqlServer answers every query with body and records the last query.
func sparqlServer(t *testing.T, body string) (*httptest.Server, *atomic.Pointer[string]) {
	t.Helper()
	var last atomic.Pointer[string]
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err == nil {
			q := r.PostForm.Get("query")
			last.Store(&q)
		}
		w.Header().Set("Content-Type", endpoint.MediaTypeXML)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(dir) {
		if dir, err = os.Getwd(); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
}
