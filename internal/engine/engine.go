package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/wikisparql/internal/condition"
	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/querysparql"
	"github.com/roach88/wikisparql/internal/results"
)

// Connection sends query text to a SPARQL endpoint.
//
// Transport failures are reported in-band as a FederatedResult with a
// non-zero error code. A returned error means the response could not be
// decoded (see results.IsMalformed); any other error is treated as an
// unreachable endpoint.
type Connection interface {
	Select(ctx context.Context, sparql string) (*results.FederatedResult, error)
	SelectCount(ctx context.Context, sparql string) (*results.FederatedResult, error)
	Ask(ctx context.Context, sparql string) (*results.FederatedResult, error)
}

// DefaultLimit is the number of items returned when a query sets no limit.
const DefaultLimit = 50

// Engine executes queries against one endpoint.
//
// Thread-safety model:
//   - GetQueryResult/GetCountQueryResult: safe from any goroutine; each call
//     owns a fresh Builder, so variable numbering never leaks between calls
//   - the Registry is shared and read-only during dispatch
//
// INVARIANTS:
//   - a QueryResult is always returned, failures travel in QueryResult.Errors
//   - errors carried by the incoming Query come first in the result
type Engine struct {
	conn      Connection
	registry  *querysparql.Registry
	vocab     ir.Vocabulary
	converter *Converter
	resolver  EntityResolver
	labels    querysparql.PropertyLabelResolver
	concepts  querysparql.ConceptResolver
	idGen     QueryIDGenerator

	compilerOpts      querysparql.Options
	ignoreQueryErrors bool
	defaultGraph      string
	defaultLimit      int
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithRegistry sets the strategy registry.
// Default: querysparql.WithDefaultStrategies().
func WithRegistry(r *querysparql.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithResolver sets the resolver used to map result IRIs to entities.
// Default: IRIResolver over the engine vocabulary.
func WithResolver(r EntityResolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithLabels sets the property label resolver used when compiling.
func WithLabels(r querysparql.PropertyLabelResolver) Option {
	return func(e *Engine) {
		e.labels = r
	}
}

// WithConcepts sets the resolver for concept definitions.
// Without one, concept restrictions match nothing.
func WithConcepts(r querysparql.ConceptResolver) Option {
	return func(e *Engine) {
		e.concepts = r
	}
}

// WithQueryIDGenerator sets the generator for query ids.
// Default: UUIDv7Generator. Use NewFixedGenerator in tests.
func WithQueryIDGenerator(g QueryIDGenerator) Option {
	return func(e *Engine) {
		e.idGen = g
	}
}

// WithIgnoreQueryErrors runs queries even when they already carry errors.
func WithIgnoreQueryErrors(ignore bool) Option {
	return func(e *Engine) {
		e.ignoreQueryErrors = ignore
	}
}

// WithDefaultGraph restricts every query to one named graph (FROM <graph>).
func WithDefaultGraph(graph string) Option {
	return func(e *Engine) {
		e.defaultGraph = graph
	}
}

// WithCompilerOptions sets the options passed to every Builder.
func WithCompilerOptions(o querysparql.Options) Option {
	return func(e *Engine) {
		e.compilerOpts = o
	}
}

// WithDefaultLimit sets the limit used when a query sets none.
// Default: 50 (DefaultLimit).
func WithDefaultLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultLimit = n
		}
	}
}

// New creates an Engine for the given connection and vocabulary.
//
// conn may be nil for an engine that only compiles (DEBUG mode); any
// other mode then reports ErrCodeNoConnection.
func New(conn Connection, vocab ir.Vocabulary, opts ...Option) *Engine {
	e := &Engine{
		conn:         conn,
		vocab:        vocab,
		idGen:        UUIDv7Generator{},
		defaultLimit: DefaultLimit,
		compilerOpts: querysparql.Options{MaxConceptDepth: querysparql.DefaultMaxConceptDepth},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = querysparql.WithDefaultStrategies()
	}
	if e.resolver == nil {
		e.resolver = IRIResolver{Vocabulary: vocab}
	}
	e.converter = NewConverter(e.resolver)
	return e
}

// Vocabulary returns the vocabulary queries are compiled against.
func (e *Engine) Vocabulary() ir.Vocabulary {
	return e.vocab
}

// compiled is a lowered query ready to be sent.
type compiled struct {
	cond   condition.Condition
	form   queryForm
	text   string
	limit  int
	errors []string
}

// Compile lowers a query and assembles the SPARQL text for its mode.
// A singleton root becomes an ASK query, COUNT a COUNT query and every
// other mode a SELECT DISTINCT query.
func (e *Engine) Compile(q Query) (string, []string) {
	c := e.compile(q)
	return c.text, c.errors
}

func (e *Engine) compile(q Query) compiled {
	b := querysparql.NewBuilder(e.registry, e.vocab,
		querysparql.WithOptions(e.compilerOpts),
		querysparql.WithLabels(e.labels),
		querysparql.WithConcepts(e.concepts),
	)
	if q.Mode != ModeCount {
		b.SetSortKeys(q.SortKeys)
	}
	cond := b.BuildCondition(q.Description)

	limit := q.Limit
	if limit <= 0 {
		limit = e.defaultLimit
	}
	offset := max(q.Offset, 0)

	qt := queryText{where: b.ConvertConditionToString(cond)}
	switch {
	case isSingleton(cond):
		qt.form = formAsk
	case q.Mode == ModeCount:
		qt.form = formCount
	default:
		qt.form = formSelect
		qt.orderBy = b.OrderByClause()
		qt.limit = limit + 1
		qt.offset = offset
	}

	return compiled{
		cond:   cond,
		form:   qt.form,
		text:   assemble(e.vocab, e.defaultGraph, qt),
		limit:  limit,
		errors: b.Errors(),
	}
}

func isSingleton(c condition.Condition) bool {
	_, ok := c.(*condition.Singleton)
	return ok
}

func isFalse(c condition.Condition) bool {
	_, ok := c.(*condition.False)
	return ok
}

// GetQueryResult executes q and returns its result.
//
// In DEBUG mode the second return value is the SPARQL text and the result
// carries the query's own errors plus the compile errors; in every other
// mode it is "".
//
// ERROR HANDLING: nothing is returned as a Go error. Unreachable endpoints,
// partial answers, malformed responses and unresolvable rows end up in
// QueryResult.Errors so callers can always render what they got.
func (e *Engine) GetQueryResult(ctx context.Context, q Query) (*QueryResult, string) {
	id := e.idGen.Generate()
	log := slog.With("query_id", id, "mode", q.Mode.String())

	if q.Mode == ModeNone {
		r := newResult(q)
		r.QueryID = id
		return r, ""
	}

	// DEBUG exists to inspect a query, so it compiles even when the query
	// already carries errors.
	if q.Mode == ModeDebug {
		c := e.compile(q)
		log.Debug("query compiled", "form", c.form.String(), "sparql", c.text)
		r := newResult(q)
		r.QueryID = id
		r.AddErrors(c.errors...)
		return r, c.text
	}

	if len(q.Errors) > 0 && !e.ignoreQueryErrors {
		log.Debug("query carries errors, skipping execution", "errors", len(q.Errors))
		r := newResult(q)
		r.QueryID = id
		return r, ""
	}

	c := e.compile(q)
	log.Debug("query compiled", "form", c.form.String(), "sparql", c.text)

	r := e.run(ctx, log, q, c)
	r.QueryID = id
	return r, ""
}

// GetCountQueryResult executes q in COUNT mode, whatever mode it carries.
func (e *Engine) GetCountQueryResult(ctx context.Context, q Query) *QueryResult {
	q.Mode = ModeCount
	r, _ := e.GetQueryResult(ctx, q)
	return r
}

func (e *Engine) run(ctx context.Context, log *slog.Logger, q Query, c compiled) *QueryResult {
	// Compile errors travel with the query from here on.
	q.Errors = append(append([]string(nil), q.Errors...), c.errors...)

	if isFalse(c.cond) {
		log.Debug("condition is unsatisfiable, skipping endpoint")
		r := newResult(q)
		if q.Mode == ModeCount {
			r.Count = intPtr(0)
		}
		return r
	}

	if e.conn == nil {
		r := newResult(q)
		r.AddErrors((&QueryError{Code: ErrCodeNoConnection, Message: "no endpoint connection configured"}).Error())
		return r
	}

	var call func(context.Context, string) (*results.FederatedResult, error)
	switch c.form {
	case formAsk:
		call = e.conn.Ask
	case formCount:
		call = e.conn.SelectCount
	default:
		call = e.conn.Select
	}

	res, err := e.execute(ctx, log, call, c.text)
	if err != nil {
		r := newResult(q)
		r.AddErrors(err.Error())
		return r
	}

	var r *QueryResult
	switch {
	case c.form == formAsk:
		r = e.converter.ConvertAsk(ctx, res, q, c.cond.(*condition.Singleton).Match)
	case q.Mode == ModeCount:
		r = e.converter.ConvertCount(res, q)
	default:
		r = e.converter.ConvertInstances(ctx, res, q, c.limit)
	}

	if res.ErrorCode() != results.ErrorNone {
		log.Warn("endpoint returned an error", "code", res.ErrorCode().String(), "comments", res.Comments())
	}
	log.Debug("query executed", "rows", res.NumRows(), "items", len(r.Items), "errors", len(r.Errors))
	return r
}

// execute sends the query text and normalizes failures: decode errors come
// back as a QueryError, everything else as an unreachable result.
func (e *Engine) execute(
	ctx context.Context,
	log *slog.Logger,
	call func(context.Context, string) (*results.FederatedResult, error),
	text string,
) (*results.FederatedResult, error) {
	res, err := call(ctx, text)
	if err != nil {
		if results.IsMalformed(err) {
			log.Error("malformed endpoint response", "error", err)
			return nil, NewMalformedError(err)
		}
		log.Warn("endpoint request failed", "error", err)
		return results.Failed(results.ErrorUnreachable, err.Error()), nil
	}
	if res == nil {
		return results.Failed(results.ErrorUnreachable), nil
	}
	return res, nil
}
