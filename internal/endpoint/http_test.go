package endpoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/results"
)

const selectXML = `<?xml version="1.0"?>
<sparql xmlns="http://www.w3.org/2005/sparql-results#">
  <head><variable name="result"/></head>
  <results>
    <result><binding name="result"><uri>http://localhost/wiki/Special:URIResolver/Berlin</uri></binding></result>
  </results>
</sparql>`

const selectJSON = `{"head":{"vars":["result"]},"results":{"bindings":[
  {"result":{"type":"uri","value":"http://localhost/wiki/Special:URIResolver/Paris"}}
]}}`

// sparqlServer answers every request with the given handler and counts hits.
func sparqlServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func xmlHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", MediaTypeXML+"; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}

func TestSelect_XML(t *testing.T) {
	var gotQuery, gotAccept, gotMethod string
	srv, _ := sparqlServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAccept = r.Header.Get("Accept")
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("query")
		xmlHandler(selectXML)(w, r)
	})

	conn := NewHTTPConnection(srv.URL)
	res, err := conn.Select(context.Background(), "SELECT DISTINCT ?result WHERE { ?result ?p ?o . }")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "SELECT DISTINCT ?result WHERE { ?result ?p ?o . }", gotQuery)
	assert.Contains(t, gotAccept, MediaTypeXML)
	assert.Equal(t, results.ErrorNone, res.ErrorCode())
	require.Equal(t, 1, res.NumRows())
	assert.Equal(t, [][]ir.Element{{ir.NewResource(ir.DefaultWikiBase + "Berlin")}}, res.Rows())
}

func TestSelect_JSON(t *testing.T) {
	srv, _ := sparqlServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", MediaTypeJSON)
		_, _ = w.Write([]byte(selectJSON))
	})

	res, err := NewHTTPConnection(srv.URL).Select(context.Background(), "SELECT ...")
	require.NoError(t, err)

	assert.Equal(t, [][]ir.Element{{ir.NewResource(ir.DefaultWikiBase + "Paris")}}, res.Rows())
}

func TestAsk_BareBoolean(t *testing.T) {
	srv, _ := sparqlServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("true"))
	})

	res, err := NewHTTPConnection(srv.URL).Ask(context.Background(), "ASK { ?s ?p ?o }")
	require.NoError(t, err)
	assert.Equal(t, 1, res.NumRows())
}

func TestQuery_Failures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv, _ := sparqlServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Virtuoso 37000 Error SP030: SPARQL compiler", http.StatusInternalServerError)
		})

		res, err := NewHTTPConnection(srv.URL).Select(context.Background(), "SELECT")
		require.NoError(t, err)
		assert.Equal(t, results.ErrorUnreachable, res.ErrorCode())
		assert.Equal(t, []string{srv.URL + ": HTTP 500"}, res.Comments())
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		res, err := NewHTTPConnection(url).Select(context.Background(), "SELECT")
		require.NoError(t, err)
		assert.Equal(t, results.ErrorUnreachable, res.ErrorCode())
		assert.Equal(t, 0, res.NumRows())
	})

	t.Run("partial answer", func(t *testing.T) {
		srv, _ := sparqlServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-SQL-State", "S1TAT")
			w.Header().Set("X-SQL-Message", "RC...: Returning incomplete results, query interrupted by result timeout.")
			xmlHandler(selectXML)(w, r)
		})

		res, err := NewHTTPConnection(srv.URL).Select(context.Background(), "SELECT")
		require.NoError(t, err)
		assert.Equal(t, results.ErrorIncomplete, res.ErrorCode())
		assert.Equal(t, 1, res.NumRows())
		require.Len(t, res.Comments(), 1)
		assert.Contains(t, res.Comments()[0], "S1TAT: ")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv, _ := sparqlServer(t, xmlHandler("<html>maintenance</html>"))

		_, err := NewHTTPConnection(srv.URL).Select(context.Background(), "SELECT")
		require.Error(t, err)
		assert.True(t, results.IsMalformed(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv, _ := sparqlServer(t, xmlHandler(selectXML))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := NewHTTPConnection(srv.URL).Select(ctx, "SELECT")
		require.NoError(t, err)
		assert.Equal(t, results.ErrorUnreachable, res.ErrorCode())
	})
}

func TestQuery_Cache(t *testing.T) {
	srv, hits := sparqlServer(t, xmlHandler(selectXML))
	cache, err := OpenCache("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	conn := NewHTTPConnection(srv.URL, WithCache(cache))

	first, err := conn.Select(context.Background(), "SELECT A")
	require.NoError(t, err)
	second, err := conn.Select(context.Background(), "SELECT A")
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load(), "the second request is served from the cache")
	assert.Equal(t, first.Rows(), second.Rows())

	_, err = conn.Select(context.Background(), "SELECT B")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "different query text misses the cache")
}

func TestQuery_CacheSkipsPartialAnswers(t *testing.T) {
	srv, hits := sparqlServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SQL-State", "S1TAT")
		xmlHandler(selectXML)(w, r)
	})
	cache, err := OpenCache("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	conn := NewHTTPConnection(srv.URL, WithCache(cache))
	for n := 0; n < 2; n++ {
		res, err := conn.Select(context.Background(), "SELECT")
		require.NoError(t, err)
		assert.Equal(t, results.ErrorIncomplete, res.ErrorCode())
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestQuery_CacheSkipsMalformedAnswers(t *testing.T) {
	srv, hits := sparqlServer(t, xmlHandler("<html>maintenance</html>"))
	cache, err := OpenCache("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	conn := NewHTTPConnection(srv.URL, WithCache(cache))
	for n := 0; n < 2; n++ {
		_, err := conn.Select(context.Background(), "SELECT")
		require.Error(t, err)
		assert.True(t, results.IsMalformed(err))
	}
	assert.Equal(t, int32(2), hits.Load(), "a malformed answer is fetched again")

	_, ok, err := cache.Get(ir.Fingerprint(ir.DomainResponse, srv.URL, "SELECT"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuery_CancelledCallerDoesNotFailOthers(t *testing.T) {
	release := make(chan struct{})
	srv, hits := sparqlServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		xmlHandler(selectXML)(w, r)
	})
	conn := NewHTTPConnection(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan *results.FederatedResult, 1)
	go func() {
		res, _ := conn.Select(ctx, "SELECT")
		first <- res
	}()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan *results.FederatedResult, 1)
	go func() {
		res, _ := conn.Select(context.Background(), "SELECT")
		second <- res
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	res := <-first
	require.NotNil(t, res)
	assert.Equal(t, results.ErrorUnreachable, res.ErrorCode())

	close(release)
	res = <-second
	require.NotNil(t, res)
	assert.Equal(t, results.ErrorNone, res.ErrorCode())
	assert.Equal(t, 1, res.NumRows())
}

func TestQuery_Concurrent(t *testing.T) {
	srv, hits := sparqlServer(t, xmlHandler(selectXML))
	conn := NewHTTPConnection(srv.URL)

	const callers = 8
	var wg sync.WaitGroup
	rows := make([]int, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := conn.Select(context.Background(), "SELECT")
			if err == nil {
				// Each caller owns its cursor even when the request was shared.
				for res.Next() {
					rows[i]++
				}
			}
		}()
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.Equal(t, 1, rows[i], "caller %d", i)
	}
	assert.LessOrEqual(t, hits.Load(), int32(callers))
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, MediaTypeJSON, mediaType("application/sparql-results+json; charset=utf-8"))
	assert.Equal(t, "", mediaType(""))
	assert.Equal(t, "text/plain", mediaType("TEXT/PLAIN"))
}
