package querysparql

import (
	"cmp"
	"slices"

	"github.com/roach88/wikisparql/internal/condition"
	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
)

// ConjunctionConditionBuilder lowers Conjunction.
//
// Operands are lowered in order against the same result variable and their
// patterns concatenated. Any False operand makes the conjunction False and
// True operands are dropped. Singleton operands must agree on their match
// element, otherwise the conjunction is False; a singleton combined with
// filters keeps the filters on the matched element. Filters are joined with
// &&. An empty conjunction is True.
type ConjunctionConditionBuilder struct{}

func (ConjunctionConditionBuilder) CanHandle(d queryir.Description) bool {
	_, ok := queryir.Unwrap(d).(queryir.Conjunction)
	return ok
}

func (ConjunctionConditionBuilder) Build(b *Builder, d queryir.Description) condition.Condition {
	conj := queryir.Unwrap(d).(queryir.Conjunction)

	children := make([]condition.Condition, 0, len(conj.Parts))
	for _, part := range conj.Parts {
		children = append(children, b.Lower(part))
	}
	if b.Options().ReorderByWeight {
		slices.SortStableFunc(children, func(x, y condition.Condition) int {
			return cmp.Compare(x.Metadata().Weight, y.Metadata().Weight)
		})
	}

	var (
		meta     condition.Meta
		patterns []condition.Pattern
		filters  []condition.Expr
		match    ir.Element
	)
	for _, child := range children {
		cm := child.Metadata()
		switch c := child.(type) {
		case *condition.False:
			return &condition.False{}
		case *condition.True:
		case *condition.Where:
			patterns = append(patterns, c.Patterns...)
		case *condition.Filter:
			filters = append(filters, c.Expr)
		case *condition.Singleton:
			if match != nil && !ir.Equal(match, c.Match) {
				return &condition.False{}
			}
			match = c.Match
			patterns = append(patterns, c.Patterns...)
		}
		meta.Absorb(cm)
		meta.Safe = meta.Safe || cm.Safe
		meta.Weight += cm.Weight
	}

	if match != nil {
		if f := condition.AndOf(filters...); f != nil {
			patterns = append(patterns, condition.FilterPattern{Expr: f})
		}
		return &condition.Singleton{Meta: meta, Match: match, Patterns: patterns}
	}
	if len(filters) > 0 {
		f := condition.AndOf(filters...)
		if len(patterns) == 0 {
			return &condition.Filter{Meta: meta, Expr: f}
		}
		patterns = append(patterns, condition.FilterPattern{Expr: f})
	}
	if len(patterns) == 0 {
		return &condition.True{Meta: meta}
	}
	return &condition.Where{Meta: meta, Patterns: patterns}
}

// DisjunctionConditionBuilder lowers Disjunction.
//
// False operands are dropped and a True operand makes the disjunction True.
// Pattern operands become UNION branches. Filter operands, and singletons
// as equality filters on the result variable, are joined with ||. When
// both branches and filters exist, the union binds a fresh variable inside
// an OPTIONAL and the filter accepts the result when it equals that
// variable. An empty disjunction is False.
type DisjunctionConditionBuilder struct{}

func (DisjunctionConditionBuilder) CanHandle(d queryir.Description) bool {
	_, ok := queryir.Unwrap(d).(queryir.Disjunction)
	return ok
}

func (DisjunctionConditionBuilder) Build(b *Builder, d queryir.Description) condition.Condition {
	disj := queryir.Unwrap(d).(queryir.Disjunction)
	result := condition.Var(b.ResultVariable())

	var (
		meta     condition.Meta
		branches [][]condition.Pattern
		filters  []condition.Expr
		safe     = true
	)
	for _, part := range disj.Parts {
		child := b.Lower(part)
		cm := child.Metadata()
		switch c := child.(type) {
		case *condition.False:
			continue
		case *condition.True:
			return &condition.True{}
		case *condition.Where:
			branches = append(branches, c.Patterns)
			safe = safe && cm.Safe
		case *condition.Filter:
			filters = append(filters, c.Expr)
		case *condition.Singleton:
			eq := condition.Compare{Op: "=", Left: result, Right: condition.Const{Element: c.Match}}
			if len(c.Patterns) == 0 {
				filters = append(filters, eq)
			} else {
				branch := append([]condition.Pattern(nil), c.Patterns...)
				branches = append(branches, append(branch, condition.FilterPattern{Expr: eq}))
				safe = safe && cm.Safe
			}
		}
		meta.Absorb(cm)
		meta.Weight += cm.Weight
	}

	switch {
	case len(branches) == 0 && len(filters) == 0:
		return &condition.False{}
	case len(branches) == 0:
		meta.Weight += 2
		return &condition.Filter{Meta: meta, Expr: condition.OrOf(filters...)}
	case len(filters) == 0:
		meta.Safe = safe
		meta.Weight += 2
		return &condition.Where{Meta: meta, Patterns: []condition.Pattern{condition.Union{Branches: branches}}}
	}

	join := b.NewVariable()
	joined := make([][]condition.Pattern, len(branches))
	for i, br := range branches {
		joined[i] = condition.Substitute(br, string(result), condition.Var(join))
	}
	filters = append(filters, condition.Compare{Op: "=", Left: result, Right: condition.Var(join)})
	meta.Weight += 4
	return &condition.Where{
		Meta: meta,
		Patterns: []condition.Pattern{
			condition.Optional{Patterns: []condition.Pattern{condition.Union{Branches: joined}}},
			condition.FilterPattern{Expr: condition.OrOf(filters...)},
		},
	}
}
