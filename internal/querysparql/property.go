package querysparql

import (
	"github.com/roach88/wikisparql/internal/condition"
	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
)

// PropertyConditionBuilder lowers SomeProperty descriptions.
//
// The object variable is allocated before the inner description is lowered,
// so variables are numbered in pre-order. The inner description restricts
// the object variable: a Singleton inner collapses into a constant object
// and a False inner makes the whole restriction False.
type PropertyConditionBuilder struct{}

func (PropertyConditionBuilder) CanHandle(d queryir.Description) bool {
	_, ok := queryir.Unwrap(d).(queryir.SomeProperty)
	return ok
}

func (PropertyConditionBuilder) Build(b *Builder, d queryir.Description) condition.Condition {
	sp := queryir.Unwrap(d).(queryir.SomeProperty)
	result := condition.Var(b.ResultVariable())
	predicate := b.PropertyPredicate(sp.Property)

	object, isSortKey := b.sortKeyVariable(sp.Property)
	if !isSortKey {
		object = b.NewVariable()
	}

	var inner queryir.Description = queryir.Thing{}
	if sp.Inner != nil {
		inner = sp.Inner
	}
	sub := b.WithResultVariable(object, func() condition.Condition {
		return b.Lower(inner)
	})

	meta := condition.Meta{Safe: true, PropertyPaths: []ir.PropertyID{sp.Property}}
	if isSortKey {
		meta.SetOrderBy(sp.Property, object)
	}
	subMeta := sub.Metadata()
	meta.AddPropertyPaths(subMeta.PropertyPaths...)
	meta.Weak = append(meta.Weak, subMeta.Weak...)

	objectVar := condition.Var(object)
	var patterns []condition.Pattern

	switch s := sub.(type) {
	case *condition.False:
		return &condition.False{}
	case *condition.Singleton:
		if isSortKey {
			patterns = append(patterns, condition.NewTriple(result, predicate, objectVar))
			patterns = append(patterns, s.Patterns...)
			patterns = append(patterns, condition.FilterPattern{Expr: condition.Compare{
				Op: "=", Left: objectVar, Right: condition.Const{Element: s.Match},
			}})
			meta.Weight = 3 + s.Weight
		} else {
			match := condition.Const{Element: s.Match}
			patterns = append(patterns, condition.NewTriple(result, predicate, match))
			patterns = append(patterns, condition.Substitute(s.Patterns, object, match)...)
			meta.Weight = 1 + s.Weight
		}
	case *condition.Filter:
		patterns = append(patterns,
			condition.NewTriple(result, predicate, objectVar),
			condition.FilterPattern{Expr: s.Expr})
		meta.Weight = 3 + s.Weight
	case *condition.Where:
		patterns = append(patterns, condition.NewTriple(result, predicate, objectVar))
		patterns = append(patterns, s.Patterns...)
		meta.Weight = 3 + s.Weight
	default:
		patterns = append(patterns, condition.NewTriple(result, predicate, objectVar))
		meta.Weight = 3
	}

	return &condition.Where{Meta: meta, Patterns: patterns}
}
