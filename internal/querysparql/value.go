package querysparql

import (
	"regexp"
	"strings"

	"github.com/roach88/wikisparql/internal/condition"
	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
)

// ThingConditionBuilder lowers Thing, and anything else, to True.
type ThingConditionBuilder struct{}

func (ThingConditionBuilder) CanHandle(queryir.Description) bool { return true }

func (ThingConditionBuilder) Build(*Builder, queryir.Description) condition.Condition {
	return &condition.True{}
}

// ValueConditionBuilder lowers Value descriptions.
//
// Without a property, Eq fixes the result variable (Singleton) and every
// other comparator filters it. With a property, Eq becomes a triple with a
// constant object and every other comparator a triple with a fresh variable
// plus a FILTER on it. A property that is a sort key always binds its
// variable so ORDER BY can use it.
type ValueConditionBuilder struct{}

func (ValueConditionBuilder) CanHandle(d queryir.Description) bool {
	_, ok := queryir.Unwrap(d).(queryir.Value)
	return ok
}

func (ValueConditionBuilder) Build(b *Builder, d queryir.Description) condition.Condition {
	v := queryir.Unwrap(d).(queryir.Value)
	if v.Value == nil {
		b.AddError("value restriction without a value")
		return &condition.False{}
	}
	result := condition.Var(b.ResultVariable())

	if v.Property == "" {
		if v.Comparator == queryir.Eq {
			return &condition.Singleton{
				Meta:  condition.Meta{Weight: 1},
				Match: v.Value,
			}
		}
		return &condition.Filter{
			Meta: condition.Meta{Weight: 4},
			Expr: compareExpr(result, v),
		}
	}

	predicate := b.PropertyPredicate(v.Property)
	meta := condition.Meta{Safe: true, PropertyPaths: []ir.PropertyID{v.Property}}
	sortVar, isSortKey := b.sortKeyVariable(v.Property)
	if isSortKey {
		meta.SetOrderBy(v.Property, sortVar)
	}

	if v.Comparator == queryir.Eq && !isSortKey {
		meta.Weight = 1
		return &condition.Where{
			Meta:     meta,
			Patterns: []condition.Pattern{condition.NewTriple(result, predicate, condition.Const{Element: v.Value})},
		}
	}

	object := sortVar
	if !isSortKey {
		object = b.NewVariable()
	}
	meta.Weight = 3
	return &condition.Where{
		Meta: meta,
		Patterns: []condition.Pattern{
			condition.NewTriple(result, predicate, condition.Var(object)),
			condition.FilterPattern{Expr: compareExpr(condition.Var(object), v)},
		},
	}
}

// compareExpr builds the FILTER expression comparing target with v.
func compareExpr(target condition.Var, v queryir.Value) condition.Expr {
	if v.Comparator.IsPattern() {
		_, isResource := v.Value.(ir.Resource)
		return condition.Regex{
			Target:  target,
			Pattern: "^" + likePattern(lexicalForm(v.Value)) + "$",
			Flags:   "s",
			Str:     isResource,
			Negated: v.Comparator == queryir.NotLike,
		}
	}
	return condition.Compare{
		Op:    v.Comparator.SPARQLOperator(),
		Left:  target,
		Right: condition.Const{Element: v.Value},
	}
}

// likePattern converts a wiki wildcard pattern ("*" any run, "?" any
// character) into a regular expression.
func likePattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

func lexicalForm(e ir.Element) string {
	switch t := e.(type) {
	case ir.Literal:
		return t.Lexical
	case *ir.Literal:
		return t.Lexical
	case ir.Resource:
		return t.IRI
	case *ir.Resource:
		return t.IRI
	}
	return ""
}
