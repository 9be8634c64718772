package ir

import (
	"strings"
)

// Element is a sealed interface representing an RDF term as it appears in a
// query or in an endpoint result. Only Resource and Literal implement it.
type Element interface {
	element() // Sealed - only these types implement it

	// String returns an N-Triples style rendering, useful in logs and errors.
	String() string
}

// Resource is a term identified by an IRI.
//
// Blank nodes coming back from an endpoint are kept as resources whose IRI
// starts with "_:".
type Resource struct {
	IRI string
}

func (Resource) element() {}

func (r Resource) String() string {
	if r.IsBlank() {
		return r.IRI
	}
	return "<" + r.IRI + ">"
}

// IsBlank reports whether the resource stands for a blank node.
func (r Resource) IsBlank() bool {
	return strings.HasPrefix(r.IRI, "_:")
}

// Literal is a lexical value with an optional datatype IRI.
// An empty Datatype means the literal is untyped.
type Literal struct {
	Lexical  string
	Datatype string
	Lang     string
}

func (Literal) element() {}

func (l Literal) String() string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(escapeLexical(l.Lexical))
	b.WriteByte('"')
	switch {
	case l.Lang != "":
		b.WriteByte('@')
		b.WriteString(l.Lang)
	case l.Datatype != "":
		b.WriteString("^^<")
		b.WriteString(l.Datatype)
		b.WriteByte('>')
	}
	return b.String()
}

// NewResource creates a Resource element.
func NewResource(iri string) Resource {
	return Resource{IRI: iri}
}

// NewLiteral creates an untyped Literal element.
func NewLiteral(lexical string) Literal {
	return Literal{Lexical: lexical}
}

// NewTypedLiteral creates a Literal with a datatype IRI.
func NewTypedLiteral(lexical, datatype string) Literal {
	return Literal{Lexical: lexical, Datatype: datatype}
}

// NewLangLiteral creates a language-tagged Literal.
func NewLangLiteral(lexical, lang string) Literal {
	return Literal{Lexical: lexical, Lang: lang}
}

// Equal compares two elements structurally. Pointer forms are compared by
// the value they point to; two nil elements are equal.
func Equal(a, b Element) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

func deref(e Element) Element {
	switch v := e.(type) {
	case *Resource:
		if v == nil {
			return nil
		}
		return *v
	case *Literal:
		if v == nil {
			return nil
		}
		return *v
	}
	return e
}

// escapeLexical escapes a lexical form for use inside a double-quoted
// Turtle/SPARQL string.
func escapeLexical(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
