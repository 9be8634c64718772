package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
	"github.com/roach88/wikisparql/internal/querysparql"
)

// Mode selects what a query computes.
type Mode int

const (
	// ModeNone computes nothing.
	ModeNone Mode = iota

	// ModeDebug returns the SPARQL text instead of running it.
	ModeDebug

	// ModeCount counts matching pages.
	ModeCount

	// ModeInstances lists matching pages.
	ModeInstances
)

var modeNames = [...]string{
	ModeNone:      "none",
	ModeDebug:     "debug",
	ModeCount:     "count",
	ModeInstances: "instances",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode parses a mode name. An empty name is ModeInstances.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeInstances, nil
	}
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return ModeNone, fmt.Errorf("unknown query mode %q (expected one of: none, debug, count, instances)", s)
}

// QueryFromFile converts a decoded query file for vocab.
//
// Problems are reported as *queryir.DecodeError values. Their Field names
// the offending key: a "$" path for the description, "mode" or
// "sort[i].order".
func QueryFromFile(qf *queryir.QueryFile, vocab ir.Vocabulary) (Query, error) {
	if qf == nil || qf.Description == nil {
		return Query{}, &queryir.DecodeError{Field: "description", Message: "missing"}
	}
	desc, err := qf.Description.Description(vocab)
	if err != nil {
		return Query{}, err
	}

	mode, err := ParseMode(qf.Mode)
	if err != nil {
		return Query{}, &queryir.DecodeError{Field: "mode", Message: err.Error()}
	}

	var keys []querysparql.SortKey
	for i, s := range qf.Sort {
		var desc bool
		switch strings.ToLower(strings.TrimSpace(s.Order)) {
		case "", "asc":
		case "desc":
			desc = true
		default:
			return Query{}, &queryir.DecodeError{
				Field:   fmt.Sprintf("sort[%d].order", i),
				Message: fmt.Sprintf("unknown order %q (expected asc or desc)", s.Order),
			}
		}
		var p ir.PropertyID
		if strings.TrimSpace(s.Property) != "" {
			p = queryir.PropertyKey(s.Property)
		}
		keys = append(keys, querysparql.SortKey{Property: p, Descending: desc})
	}

	return Query{
		Description: desc,
		Mode:        mode,
		Limit:       qf.Limit,
		Offset:      qf.Offset,
		SortKeys:    keys,
	}, nil
}

// Query is one request to the engine.
type Query struct {
	Description queryir.Description
	Mode        Mode

	// Limit caps the number of items; zero or less means the engine default.
	Limit  int
	Offset int

	// SortKeys order INSTANCES results.
	SortKeys []querysparql.SortKey

	// Errors are problems found before execution, e.g. while parsing the
	// query. They are always reported first in the result.
	Errors []string
}

// AddErrors appends errors to the query.
func (q *Query) AddErrors(errs ...string) {
	q.Errors = append(q.Errors, errs...)
}

// QueryResult is the answer to a Query.
type QueryResult struct {
	// QueryID identifies the execution in logs.
	QueryID string `json:"query_id"`

	Mode Mode `json:"-"`

	// Items are the matching pages, in result order (INSTANCES).
	Items []ir.EntityID `json:"items,omitempty"`

	// Count is the number of matching pages (COUNT); nil when it could not
	// be determined.
	Count *int `json:"count,omitempty"`

	// FurtherResults is true when more items exist past the limit.
	FurtherResults bool `json:"further_results,omitempty"`

	Errors   []string `json:"errors,omitempty"`
	Comments []string `json:"comments,omitempty"`
}

// AddErrors appends errors to the result.
func (r *QueryResult) AddErrors(errs ...string) {
	r.Errors = append(r.Errors, errs...)
}

// HasErrors reports whether the result carries errors.
func (r *QueryResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// CountValue returns the count and whether it is known.
func (r *QueryResult) CountValue() (int, bool) {
	if r.Count == nil {
		return 0, false
	}
	return *r.Count, true
}

func intPtr(n int) *int {
	return &n
}
