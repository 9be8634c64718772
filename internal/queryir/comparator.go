package queryir

import (
	"fmt"
	"strings"
)

// Comparator is the comparison of a Value description.
type Comparator int

const (
	Eq Comparator = iota
	Neq
	Less
	Greater
	Leq
	Geq
	Like
	NotLike
)

var comparatorSymbols = [...]string{
	Eq:      "=",
	Neq:     "!=",
	Less:    "<",
	Greater: ">",
	Leq:     "<=",
	Geq:     ">=",
	Like:    "~",
	NotLike: "!~",
}

var comparatorNames = map[string]Comparator{
	"eq":       Eq,
	"neq":      Neq,
	"less":     Less,
	"lt":       Less,
	"greater":  Greater,
	"gt":       Greater,
	"leq":      Leq,
	"geq":      Geq,
	"like":     Like,
	"not_like": NotLike,
	"notlike":  NotLike,
}

// String returns the wiki query symbol of the comparator.
func (c Comparator) String() string {
	if c.Valid() {
		return comparatorSymbols[c]
	}
	return fmt.Sprintf("comparator(%d)", int(c))
}

// Valid reports whether c is one of the declared comparators.
func (c Comparator) Valid() bool {
	return c >= Eq && c <= NotLike
}

// IsPattern reports whether the comparator matches with wildcards.
func (c Comparator) IsPattern() bool {
	return c == Like || c == NotLike
}

// SPARQLOperator returns the SPARQL relational operator for c.
// Pattern comparators have no operator and return "".
func (c Comparator) SPARQLOperator() string {
	switch c {
	case Eq, Neq, Less, Greater, Leq, Geq:
		return comparatorSymbols[c]
	}
	return ""
}

// ParseComparator accepts a symbol ("<=", "~") or a name ("leq", "like").
// An empty string is Eq.
func ParseComparator(s string) (Comparator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Eq, nil
	}
	for c, sym := range comparatorSymbols {
		if sym == s {
			return Comparator(c), nil
		}
	}
	if c, ok := comparatorNames[strings.ToLower(s)]; ok {
		return c, nil
	}
	return Eq, fmt.Errorf("unknown comparator %q", s)
}
