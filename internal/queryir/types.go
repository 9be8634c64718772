package queryir

import (
	"fmt"

	"github.com/roach88/wikisparql/internal/ir"
)

// Description represents a restriction on the pages a query returns.
//
// This is a sealed interface - only types in this package implement it.
type Description interface {
	descriptionNode() // Marker method - seals interface to this package

	// Kind identifies the variant. It is the dispatch key of the
	// condition builder registry.
	Kind() Kind
}

// Kind enumerates the description variants.
type Kind int

const (
	KindThing Kind = iota
	KindValue
	KindSomeProperty
	KindClass
	KindNamespace
	KindConcept
	KindConjunction
	KindDisjunction
)

var kindNames = [...]string{
	KindThing:        "thing",
	KindValue:        "value",
	KindSomeProperty: "some_property",
	KindClass:        "class",
	KindNamespace:    "namespace",
	KindConcept:      "concept",
	KindConjunction:  "conjunction",
	KindDisjunction:  "disjunction",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds returns every description kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindThing, KindValue, KindSomeProperty, KindClass,
		KindNamespace, KindConcept, KindConjunction, KindDisjunction,
	}
}

// Thing matches every page.
type Thing struct{}

func (Thing) descriptionNode() {}
func (Thing) Kind() Kind        { return KindThing }

// Value restricts a value with a comparator.
//
// With a Property set, the result must have a value for it that compares to
// Value. With an empty Property, the current result itself is compared, which
// is how nested values are written inside SomeProperty:
//
//	SomeProperty{Property: "Population", Inner: Value{Comparator: Geq, Value: ir.NewTypedLiteral("1000", ir.XSDInteger)}}
type Value struct {
	Property   ir.PropertyID
	Comparator Comparator
	Value      ir.Element
}

func (Value) descriptionNode() {}
func (Value) Kind() Kind        { return KindValue }

// SomeProperty requires a value for Property that satisfies Inner.
// A nil Inner is treated as Thing.
type SomeProperty struct {
	Property ir.PropertyID
	Inner    Description
}

func (SomeProperty) descriptionNode() {}
func (SomeProperty) Kind() Kind        { return KindSomeProperty }

// Class requires membership of a category.
type Class struct {
	Category ir.EntityID
}

func (Class) descriptionNode() {}
func (Class) Kind() Kind        { return KindClass }

// Namespace requires the page to be in a wiki namespace.
type Namespace struct {
	Index int
}

func (Namespace) descriptionNode() {}
func (Namespace) Kind() Kind        { return KindNamespace }

// Concept requires the page to satisfy a stored concept definition.
type Concept struct {
	Entity ir.EntityID
}

func (Concept) descriptionNode() {}
func (Concept) Kind() Kind        { return KindConcept }

// Conjunction requires every part to hold. An empty conjunction matches
// every page.
type Conjunction struct {
	Parts []Description
}

func (Conjunction) descriptionNode() {}
func (Conjunction) Kind() Kind        { return KindConjunction }

// Disjunction requires at least one part to hold. An empty disjunction
// matches nothing.
type Disjunction struct {
	Parts []Description
}

func (Disjunction) descriptionNode() {}
func (Disjunction) Kind() Kind        { return KindDisjunction }

// Unwrap returns the value form of a description. Nil pointers become nil.
func Unwrap(d Description) Description {
	switch v := d.(type) {
	case *Thing:
		if v == nil {
			return nil
		}
		return *v
	case *Value:
		if v == nil {
			return nil
		}
		return *v
	case *SomeProperty:
		if v == nil {
			return nil
		}
		return *v
	case *Class:
		if v == nil {
			return nil
		}
		return *v
	case *Namespace:
		if v == nil {
			return nil
		}
		return *v
	case *Concept:
		if v == nil {
			return nil
		}
		return *v
	case *Conjunction:
		if v == nil {
			return nil
		}
		return *v
	case *Disjunction:
		if v == nil {
			return nil
		}
		return *v
	}
	return d
}
