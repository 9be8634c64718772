package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/wikisparql/internal/ir"
)

// queryForm is the outer shape of a query sent to the endpoint.
type queryForm int

const (
	formSelect queryForm = iota
	formCount
	formAsk
)

func (f queryForm) String() string {
	switch f {
	case formCount:
		return "count"
	case formAsk:
		return "ask"
	default:
		return "select"
	}
}

// queryText holds the pieces a query is assembled from.
type queryText struct {
	form    queryForm
	where   string
	orderBy string
	limit   int
	offset  int
}

// assemble renders a complete SPARQL query: PREFIX declarations, the
// projection, an optional FROM clause, the WHERE block and the solution
// modifiers. Output is deterministic for equal input.
func assemble(vocab ir.Vocabulary, graph string, q queryText) string {
	var b strings.Builder
	for _, p := range vocab.Prefixes() {
		fmt.Fprintf(&b, "PREFIX %s: <%s>\n", p.Name, p.IRI)
	}
	switch q.form {
	case formAsk:
		b.WriteString("ASK\n")
	case formCount:
		b.WriteString("SELECT (COUNT(DISTINCT ?result) AS ?count)\n")
	default:
		b.WriteString("SELECT DISTINCT ?result\n")
	}
	if graph != "" {
		fmt.Fprintf(&b, "FROM <%s>\n", graph)
	}
	b.WriteString("WHERE {\n")
	b.WriteString(q.where)
	b.WriteString("}\n")
	if q.form != formSelect {
		return b.String()
	}
	if q.orderBy != "" {
		b.WriteString(q.orderBy)
		b.WriteByte('\n')
	}
	if q.limit > 0 {
		fmt.Fprintf(&b, "LIMIT %d\n", q.limit)
	}
	if q.offset > 0 {
		fmt.Fprintf(&b, "OFFSET %d\n", q.offset)
	}
	return b.String()
}
