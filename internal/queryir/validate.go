package queryir

import (
	"fmt"

	"github.com/roach88/wikisparql/internal/ir"
)

// ValidationResult contains the structural analysis of a description.
type ValidationResult struct {
	// Valid is true when no warnings were found.
	Valid bool

	// Warnings lists structural problems, in traversal order.
	Warnings []string

	// Depth is the nesting depth of the description (a leaf has depth 1).
	Depth int
}

// Validate walks a description and reports structural problems.
//
// Problems reported:
//  1. nil description nodes
//  2. Value or SomeProperty with an empty property id where one is required
//  3. Value without an element to compare with
//  4. comparators outside the declared set
//  5. Like/NotLike on a resource value
//  6. Class/Concept with an empty title, Namespace with a negative index
//
// Validate is a pure function with no side effects.
func Validate(d Description) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	depth := v.validate(d, "$")

	return ValidationResult{
		Valid:    len(v.warnings) == 0,
		Warnings: v.warnings,
		Depth:    depth,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

// addWarning appends a warning message.
func (v *validator) addWarning(path, format string, args ...any) {
	v.warnings = append(v.warnings, path+": "+fmt.Sprintf(format, args...))
}

// validate recursively validates a node and returns its depth.
func (v *validator) validate(d Description, path string) int {
	d = Unwrap(d)
	if d == nil {
		v.addWarning(path, "nil description")
		return 0
	}

	switch desc := d.(type) {
	case Thing:
		return 1
	case Value:
		v.validateValue(desc, path)
		return 1
	case SomeProperty:
		if desc.Property == "" {
			v.addWarning(path, "property restriction without a property")
		}
		if desc.Inner == nil {
			return 1
		}
		return 1 + v.validate(desc.Inner, path+".some")
	case Class:
		if desc.Category.Title == "" {
			v.addWarning(path, "class without a category")
		}
		return 1
	case Namespace:
		if desc.Index < 0 {
			v.addWarning(path, "negative namespace index %d", desc.Index)
		}
		return 1
	case Concept:
		if desc.Entity.Title == "" {
			v.addWarning(path, "concept without a title")
		}
		return 1
	case Conjunction:
		return 1 + v.validateParts(desc.Parts, path+".and")
	case Disjunction:
		return 1 + v.validateParts(desc.Parts, path+".or")
	default:
		v.addWarning(path, "unknown description type: %T", d)
		return 0
	}
}

func (v *validator) validateValue(val Value, path string) {
	if !val.Comparator.Valid() {
		v.addWarning(path, "unknown comparator %d", int(val.Comparator))
	}
	if val.Value == nil {
		v.addWarning(path, "value restriction without a value")
		return
	}
	switch val.Value.(type) {
	case ir.Resource, *ir.Resource:
		if val.Comparator.IsPattern() {
			v.addWarning(path, "pattern comparator %s on a page value matches its IRI", val.Comparator)
		}
	}
}

func (v *validator) validateParts(parts []Description, path string) int {
	max := 0
	for i, p := range parts {
		if d := v.validate(p, fmt.Sprintf("%s[%d]", path, i)); d > max {
			max = d
		}
	}
	return max
}
