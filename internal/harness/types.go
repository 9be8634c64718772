package harness

import "github.com/roach88/wikisparql/internal/engine"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// QueryID is the id the engine assigned to the execution.
	QueryID string `json:"query_id"`

	// Requests holds the query texts the endpoint received, in order.
	Requests []string `json:"requests"`

	// Debug is the SPARQL text returned in DEBUG mode.
	Debug string `json:"debug,omitempty"`

	// QueryResult is what the engine returned.
	QueryResult *engine.QueryResult `json:"result"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Requests: []string{},
		Errors:   []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// sparql returns every query text the scenario produced: the sent
// requests followed by the DEBUG text, if any.
func (r *Result) sparql() []string {
	out := append([]string(nil), r.Requests...)
	if r.Debug != "" {
		out = append(out, r.Debug)
	}
	return out
}
