package engine

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/results"
)

// Converter turns endpoint results into query results.
//
// Every conversion starts from the errors the query already carries, so
// pre-existing errors always come first and are never dropped.
type Converter struct {
	resolver EntityResolver
}

// NewConverter creates a Converter that maps result IRIs through resolver.
func NewConverter(resolver EntityResolver) *Converter {
	return &Converter{resolver: resolver}
}

func newResult(q Query) *QueryResult {
	r := &QueryResult{Mode: q.Mode}
	if len(q.Errors) > 0 {
		r.Errors = append([]string(nil), q.Errors...)
	}
	return r
}

// failure records the error matching a non-zero error code. It reports
// false when the result carries no error.
func failure(r *QueryResult, res *results.FederatedResult) bool {
	switch res.ErrorCode() {
	case results.ErrorNone:
		return false
	case results.ErrorIncomplete:
		r.AddErrors(NewIncompleteError().Error())
	default:
		r.AddErrors(NewUnreachableError(res.Comments()...).Error())
	}
	return true
}

// ConvertCount reads the count from row 0, column 0. A result without rows
// counts as zero; an error-bearing result leaves the count absent.
func (c *Converter) ConvertCount(res *results.FederatedResult, q Query) *QueryResult {
	r := newResult(q)
	r.Comments = res.Comments()
	if failure(r, res) {
		return r
	}
	res.Rewind()
	if !res.Next() {
		r.Count = intPtr(0)
		return r
	}
	row := res.Row()
	if len(row) == 0 || row[0] == nil {
		r.AddErrors(NewBadCountError("(unbound)").Error())
		return r
	}
	n, ok := countValue(row[0])
	if !ok {
		r.AddErrors(NewBadCountError(row[0].String()).Error())
		return r
	}
	r.Count = intPtr(n)
	return r
}

func countValue(e ir.Element) (int, bool) {
	var lit ir.Literal
	switch v := e.(type) {
	case ir.Literal:
		lit = v
	case *ir.Literal:
		lit = *v
	default:
		return 0, false
	}
	s := strings.TrimSpace(lit.Lexical)
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n, true
	}
	// Some stores answer COUNT with a decimal.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f >= float64(math.MaxInt) {
		return 0, false
	}
	return int(f), true
}

// ConvertInstances resolves the "result" column of every row, in row order.
// At most limit rows are converted; a further row sets FurtherResults.
// Unbound cells are skipped silently, unresolvable ones with an error.
func (c *Converter) ConvertInstances(ctx context.Context, res *results.FederatedResult, q Query, limit int) *QueryResult {
	r := newResult(q)
	r.Comments = res.Comments()
	if failure(r, res) {
		return r
	}
	col := res.ColumnIndex("result")
	if col < 0 {
		col = 0
	}
	res.Rewind()
	n := 0
	for res.Next() {
		if limit > 0 && n >= limit {
			r.FurtherResults = true
			break
		}
		n++
		row := res.Row()
		if col >= len(row) || row[col] == nil {
			continue
		}
		if id, ok := c.resolve(ctx, r, row[col]); ok {
			r.Items = append(r.Items, id)
		}
	}
	return r
}

// ConvertAsk converts the answer to an ASK query issued for a singleton
// condition. A true answer makes match the only item.
func (c *Converter) ConvertAsk(ctx context.Context, res *results.FederatedResult, q Query, match ir.Element) *QueryResult {
	r := newResult(q)
	r.Comments = res.Comments()
	if failure(r, res) {
		return r
	}
	found := res.NumRows() > 0
	if q.Mode == ModeCount {
		if found {
			r.Count = intPtr(1)
		} else {
			r.Count = intPtr(0)
		}
		return r
	}
	if found {
		if id, ok := c.resolve(ctx, r, match); ok {
			r.Items = []ir.EntityID{id}
		}
	}
	return r
}

func (c *Converter) resolve(ctx context.Context, r *QueryResult, e ir.Element) (ir.EntityID, bool) {
	var iri string
	switch v := e.(type) {
	case ir.Resource:
		iri = v.IRI
	case *ir.Resource:
		iri = v.IRI
	default:
		r.AddErrors(NewUnresolvedError(e.String(), nil).Error())
		return ir.EntityID{}, false
	}
	id, ok, err := c.resolver.Resolve(ctx, iri)
	if err != nil || !ok {
		r.AddErrors(NewUnresolvedError(e.String(), err).Error())
		return ir.EntityID{}, false
	}
	return id, true
}
