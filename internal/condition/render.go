package condition

import (
	"strings"

	"github.com/roach88/wikisparql/internal/ir"
)

// Renderer turns a condition into query text for one result variable.
type Renderer interface {
	Render(c Condition, resultVar string) string
}

// SPARQLRenderer renders conditions as SPARQL 1.1 group graph pattern bodies.
type SPARQLRenderer struct {
	vocab ir.Vocabulary
}

// NewSPARQLRenderer creates a renderer that abbreviates IRIs with the
// prefixes of vocab.
func NewSPARQLRenderer(vocab ir.Vocabulary) *SPARQLRenderer {
	return &SPARQLRenderer{vocab: vocab}
}

// Render returns the WHERE body of c.
//
// Layout, in order: the safety triple "?result swivt:page ?url ." when
// nothing in c binds the result variable, the condition's own patterns or
// FILTER, then its weak patterns. A Singleton is rendered with the result
// variable replaced by its match element. False renders as FILTER( false ).
func (r *SPARQLRenderer) Render(c Condition, resultVar string) string {
	if c == nil {
		return ""
	}
	m := c.Metadata()

	var patterns []Pattern
	if _, isFalse := c.(*False); !isFalse && !m.Safe {
		patterns = append(patterns, NewTriple(Var(resultVar), SwivtPage, Var("url")))
	}

	switch cond := c.(type) {
	case *Where:
		patterns = append(patterns, cond.Patterns...)
	case *Filter:
		if cond.Expr != nil {
			patterns = append(patterns, FilterPattern{Expr: cond.Expr})
		}
	case *Singleton:
		patterns = append(patterns, cond.Patterns...)
	case *False:
		patterns = append(patterns, FilterPattern{Expr: BoolConst(false)})
	case *True:
	}
	patterns = append(patterns, m.Weak...)

	if s, ok := c.(*Singleton); ok && s.Match != nil {
		patterns = Substitute(patterns, resultVar, Const{Element: s.Match})
	}

	var b strings.Builder
	r.writePatterns(&b, patterns)
	return b.String()
}

// RenderPatterns renders a pattern list, one line per pattern.
func (r *SPARQLRenderer) RenderPatterns(patterns []Pattern) string {
	var b strings.Builder
	r.writePatterns(&b, patterns)
	return b.String()
}

func (r *SPARQLRenderer) writePatterns(b *strings.Builder, patterns []Pattern) {
	for _, p := range patterns {
		r.writePattern(b, p)
	}
}

func (r *SPARQLRenderer) writePattern(b *strings.Builder, p Pattern) {
	switch pat := p.(type) {
	case Triple:
		b.WriteString(r.RenderTerm(pat.Subject))
		b.WriteByte(' ')
		b.WriteString(r.RenderTerm(pat.Predicate))
		b.WriteByte(' ')
		b.WriteString(r.RenderTerm(pat.Object))
		b.WriteString(" .\n")
	case Group:
		b.WriteString("{ ")
		b.WriteString(r.inline(pat.Patterns))
		b.WriteString(" }\n")
	case Optional:
		b.WriteString("OPTIONAL { ")
		b.WriteString(r.inline(pat.Patterns))
		b.WriteString(" }\n")
	case Union:
		for i, branch := range pat.Branches {
			if i == 0 {
				b.WriteString("{\n")
			} else {
				b.WriteString("} UNION {\n")
			}
			r.writePatterns(b, branch)
		}
		if len(pat.Branches) > 0 {
			b.WriteString("}\n")
		}
	case FilterPattern:
		b.WriteString("FILTER( ")
		b.WriteString(r.RenderExpr(pat.Expr))
		b.WriteString(" )\n")
	}
}

// inline renders patterns on a single line.
func (r *SPARQLRenderer) inline(patterns []Pattern) string {
	return strings.TrimSpace(strings.ReplaceAll(r.RenderPatterns(patterns), "\n", " "))
}

// RenderExpr renders a FILTER expression without the FILTER keyword.
func (r *SPARQLRenderer) RenderExpr(e Expr) string {
	switch ex := e.(type) {
	case BoolConst:
		if ex {
			return "true"
		}
		return "false"
	case Compare:
		return r.RenderTerm(ex.Left) + " " + ex.Op + " " + r.RenderTerm(ex.Right)
	case Regex:
		target := r.RenderTerm(ex.Target)
		if ex.Str {
			target = "str( " + target + " )"
		}
		s := "regex( " + target + ", " + r.vocab.TurtleName(ir.NewLiteral(ex.Pattern))
		if ex.Flags != "" {
			s += ", " + r.vocab.TurtleName(ir.NewLiteral(ex.Flags))
		}
		s += " )"
		if ex.Negated {
			s = "!" + s
		}
		return s
	case And:
		return r.joinExprs(ex.Exprs, " && ")
	case Or:
		return r.joinExprs(ex.Exprs, " || ")
	}
	return ""
}

func (r *SPARQLRenderer) joinExprs(exprs []Expr, op string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		s := r.RenderExpr(e)
		switch e.(type) {
		case And, Or:
			s = "( " + s + " )"
		}
		parts[i] = s
	}
	return strings.Join(parts, op)
}

// RenderTerm renders a single term.
func (r *SPARQLRenderer) RenderTerm(t Term) string {
	switch term := t.(type) {
	case Var:
		return "?" + string(term)
	case Const:
		return r.vocab.TurtleName(term.Element)
	case QName:
		return term.String()
	case Path:
		return term.String()
	}
	return ""
}
