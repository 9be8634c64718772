package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

const defaultMediaType = "application/sparql-results+xml"

// Response is one canned endpoint answer.
type Response struct {
	// Status defaults to 200.
	Status int `yaml:"status,omitempty"`

	// MediaType defaults to application/sparql-results+xml.
	MediaType string `yaml:"media_type,omitempty"`
	Body      string `yaml:"body,omitempty"`

	// SQLState and SQLMessage mark a partial answer the way Virtuoso does.
	SQLState   string `yaml:"sql_state,omitempty"`
	SQLMessage string `yaml:"sql_message,omitempty"`

	// Drop closes the connection without answering.
	Drop bool `yaml:"drop,omitempty"`
}

// Request is one query received by a ScriptedEndpoint.
type Request struct {
	Seq    int
	Query  string
	Accept string
}

// ScriptedEndpoint is an HTTP SPARQL endpoint that answers the n-th request
// with the n-th scripted response. Once the script is exhausted the last
// response repeats; an empty script answers 500.
//
// Thread-safety: all methods are safe for concurrent use.
type ScriptedEndpoint struct {
	mu        sync.Mutex
	server    *httptest.Server
	responses []Response
	requests  []Request
}

// NewScriptedEndpoint starts an endpoint. Call Close when done.
func NewScriptedEndpoint(responses ...Response) *ScriptedEndpoint {
	e := &ScriptedEndpoint{responses: responses}
	e.server = httptest.NewServer(http.HandlerFunc(e.serve))
	return e
}

// URL returns the query URL of the endpoint.
func (e *ScriptedEndpoint) URL() string {
	return e.server.URL
}

// Close shuts the endpoint down.
func (e *ScriptedEndpoint) Close() {
	e.server.Close()
}

// Requests returns the received requests in arrival order.
func (e *ScriptedEndpoint) Requests() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Request(nil), e.requests...)
}

// Queries returns the query texts of the received requests.
func (e *ScriptedEndpoint) Queries() []string {
	reqs := e.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Query
	}
	return out
}

func (e *ScriptedEndpoint) next(r *http.Request) (Response, bool) {
	_ = r.ParseForm()

	e.mu.Lock()
	defer e.mu.Unlock()
	seq := len(e.requests) + 1
	e.requests = append(e.requests, Request{
		Seq:    seq,
		Query:  r.PostForm.Get("query"),
		Accept: r.Header.Get("Accept"),
	})
	if len(e.responses) == 0 {
		return Response{}, false
	}
	return e.responses[min(seq, len(e.responses))-1], true
}

func (e *ScriptedEndpoint) serve(w http.ResponseWriter, r *http.Request) {
	resp, ok := e.next(r)
	if !ok {
		http.Error(w, "no scripted response", http.StatusInternalServerError)
		return
	}

	if resp.Drop {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
				return
			}
		}
		http.Error(w, "connection dropped", http.StatusBadGateway)
		return
	}

	mediaType := resp.MediaType
	if mediaType == "" {
		mediaType = defaultMediaType
	}
	w.Header().Set("Content-Type", mediaType)
	if resp.SQLState != "" {
		w.Header().Set("X-SQL-State", resp.SQLState)
		w.Header().Set("X-SQL-Message", resp.SQLMessage)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp.Body))
}
