package condition

import (
	"strings"

	"github.com/roach88/wikisparql/internal/ir"
)

// Term is a subject, predicate or object position of a triple, or an
// operand of an expression.
//
// This is a sealed interface - only types in this package implement it.
type Term interface {
	termNode()
}

// Var is a query variable, named without the leading "?".
type Var string

func (Var) termNode() {}

// Const is a constant element.
type Const struct {
	Element ir.Element
}

func (Const) termNode() {}

// QName is a prefixed name such as rdf:type or property:Population.
type QName struct {
	Prefix string
	Local  string
}

func (QName) termNode() {}

func (q QName) String() string {
	return q.Prefix + ":" + q.Local
}

// Path is a property path: a sequence of steps, each with an optional
// modifier ("*", "+", "?").
type Path struct {
	Steps []PathStep
}

// PathStep is one step of a Path.
type PathStep struct {
	Predicate QName
	Modifier  string
}

func (Path) termNode() {}

func (p Path) String() string {
	parts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		parts[i] = s.Predicate.String() + s.Modifier
	}
	return strings.Join(parts, "/")
}

// Well-known predicates.
var (
	RDFType        = QName{Prefix: "rdf", Local: "type"}
	RDFSSubClassOf = QName{Prefix: "rdfs", Local: "subClassOf"}
	SwivtPage      = QName{Prefix: "swivt", Local: "page"}
	SwivtNamespace = QName{Prefix: "swivt", Local: "wikiNamespace"}
	SwivtSortKey   = QName{Prefix: "swivt", Local: "wikiPageSortKey"}
)

// PropertyName returns the prefixed name of a property predicate.
func PropertyName(p ir.PropertyID) QName {
	return QName{Prefix: "property", Local: ir.PropertyLocalName(p)}
}
