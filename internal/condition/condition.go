package condition

import (
	"slices"

	"github.com/roach88/wikisparql/internal/ir"
)

// Condition is the lowered form of a description.
//
// This is a sealed interface - only types in this package implement it.
type Condition interface {
	conditionNode()

	// Metadata returns the mutable metadata of the condition.
	Metadata() *Meta
}

// Meta is carried by every condition.
type Meta struct {
	// Namespaces is the sorted set of namespace indexes the condition
	// restricts to.
	Namespaces []int

	// PropertyPaths lists the properties the condition traverses, in order.
	PropertyPaths []ir.PropertyID

	// Weight estimates selectivity; lower values are evaluated first when
	// conjunction reordering is enabled.
	Weight int

	// OrderBy maps sort-key properties to the variable bound to their value.
	OrderBy map[ir.PropertyID]string

	// Weak holds patterns that are appended after the condition without
	// restricting it, such as OPTIONAL bindings for sort keys.
	Weak []Pattern

	// Safe is true when the condition's patterns bind the result variable.
	Safe bool
}

// AddNamespaces merges indexes into the namespace set.
func (m *Meta) AddNamespaces(ns ...int) {
	for _, n := range ns {
		i, found := slices.BinarySearch(m.Namespaces, n)
		if !found {
			m.Namespaces = slices.Insert(m.Namespaces, i, n)
		}
	}
}

// AddPropertyPaths appends properties to the path list.
func (m *Meta) AddPropertyPaths(ps ...ir.PropertyID) {
	m.PropertyPaths = append(m.PropertyPaths, ps...)
}

// SetOrderBy records the variable bound to a sort-key property.
func (m *Meta) SetOrderBy(p ir.PropertyID, variable string) {
	if m.OrderBy == nil {
		m.OrderBy = make(map[ir.PropertyID]string)
	}
	m.OrderBy[p] = variable
}

// Absorb merges the namespaces, property paths, order-by bindings and weak
// patterns of other into m. Safe and Weight are left to the caller.
func (m *Meta) Absorb(other *Meta) {
	if other == nil {
		return
	}
	m.AddNamespaces(other.Namespaces...)
	m.AddPropertyPaths(other.PropertyPaths...)
	for p, v := range other.OrderBy {
		m.SetOrderBy(p, v)
	}
	m.Weak = append(m.Weak, other.Weak...)
}

// Where is a set of graph patterns.
type Where struct {
	Meta
	Patterns []Pattern
}

func (*Where) conditionNode()    {}
func (c *Where) Metadata() *Meta { return &c.Meta }

// Filter is a FILTER expression with no patterns of its own.
type Filter struct {
	Meta
	Expr Expr
}

func (*Filter) conditionNode()    {}
func (c *Filter) Metadata() *Meta { return &c.Meta }

// Singleton fixes the result variable to Match. Patterns may still
// constrain Match further; they mention the result variable, which the
// renderer replaces with Match.
type Singleton struct {
	Meta
	Match    ir.Element
	Patterns []Pattern
}

func (*Singleton) conditionNode()    {}
func (c *Singleton) Metadata() *Meta { return &c.Meta }

// False matches nothing.
type False struct {
	Meta
}

func (*False) conditionNode()    {}
func (c *False) Metadata() *Meta { return &c.Meta }

// True matches everything.
type True struct {
	Meta
}

func (*True) conditionNode()    {}
func (c *True) Metadata() *Meta { return &c.Meta }

// Substitute returns a copy of patterns with every occurrence of the
// variable name replaced by t. The input is not modified.
func Substitute(patterns []Pattern, name string, t Term) []Pattern {
	if patterns == nil {
		return nil
	}
	out := make([]Pattern, len(patterns))
	for i, p := range patterns {
		out[i] = substitutePattern(p, name, t)
	}
	return out
}

func substitutePattern(p Pattern, name string, t Term) Pattern {
	switch pat := p.(type) {
	case Triple:
		return Triple{
			Subject:   substituteTerm(pat.Subject, name, t),
			Predicate: substituteTerm(pat.Predicate, name, t),
			Object:    substituteTerm(pat.Object, name, t),
		}
	case Group:
		return Group{Patterns: Substitute(pat.Patterns, name, t)}
	case Optional:
		return Optional{Patterns: Substitute(pat.Patterns, name, t)}
	case Union:
		branches := make([][]Pattern, len(pat.Branches))
		for i, br := range pat.Branches {
			branches[i] = Substitute(br, name, t)
		}
		return Union{Branches: branches}
	case FilterPattern:
		return FilterPattern{Expr: SubstituteExpr(pat.Expr, name, t)}
	}
	return p
}

// SubstituteExpr is Substitute for expressions.
func SubstituteExpr(e Expr, name string, t Term) Expr {
	switch ex := e.(type) {
	case Compare:
		return Compare{Op: ex.Op, Left: substituteTerm(ex.Left, name, t), Right: substituteTerm(ex.Right, name, t)}
	case Regex:
		ex.Target = substituteTerm(ex.Target, name, t)
		return ex
	case And:
		return And{Exprs: substituteExprs(ex.Exprs, name, t)}
	case Or:
		return Or{Exprs: substituteExprs(ex.Exprs, name, t)}
	}
	return e
}

func substituteExprs(exprs []Expr, name string, t Term) []Expr {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = SubstituteExpr(e, name, t)
	}
	return out
}

func substituteTerm(term Term, name string, t Term) Term {
	if v, ok := term.(Var); ok && string(v) == name {
		return t
	}
	return term
}
