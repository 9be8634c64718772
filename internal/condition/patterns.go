package condition

// Pattern is one element of a WHERE group.
//
// This is a sealed interface - only types in this package implement it.
type Pattern interface {
	patternNode()
}

// Triple is a basic triple pattern.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func (Triple) patternNode() {}

// Group is a braced group of patterns, rendered on one line.
type Group struct {
	Patterns []Pattern
}

func (Group) patternNode() {}

// Union is a UNION of groups.
type Union struct {
	Branches [][]Pattern
}

func (Union) patternNode() {}

// Optional is an OPTIONAL group.
type Optional struct {
	Patterns []Pattern
}

func (Optional) patternNode() {}

// FilterPattern is a FILTER attached to the enclosing group.
type FilterPattern struct {
	Expr Expr
}

func (FilterPattern) patternNode() {}

// Expr is a FILTER expression.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode()
}

// Compare is a binary comparison such as ?v1 <= "10".
type Compare struct {
	Op    string
	Left  Term
	Right Term
}

func (Compare) exprNode() {}

// Regex matches Target against a regular expression.
// Str wraps the target in str(), needed when it may be bound to an IRI.
type Regex struct {
	Target  Term
	Pattern string
	Flags   string
	Str     bool
	Negated bool
}

func (Regex) exprNode() {}

// Or is a disjunction of expressions.
type Or struct {
	Exprs []Expr
}

func (Or) exprNode() {}

// And is a conjunction of expressions.
type And struct {
	Exprs []Expr
}

func (And) exprNode() {}

// BoolConst is a constant truth value.
type BoolConst bool

func (BoolConst) exprNode() {}

// NewTriple builds a triple pattern.
func NewTriple(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// AndOf combines expressions into a conjunction, flattening single operands.
// It returns nil for no expressions.
func AndOf(exprs ...Expr) Expr {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}
	return And{Exprs: exprs}
}

// OrOf combines expressions into a disjunction, flattening single operands.
// It returns nil for no expressions.
func OrOf(exprs ...Expr) Expr {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}
	return Or{Exprs: exprs}
}
