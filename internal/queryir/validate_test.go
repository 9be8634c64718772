package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/wikisparql/internal/ir"
)

func TestValidateValid(t *testing.T) {
	d := Conjunction{Parts: []Description{
		Class{Category: ir.NewEntityID(ir.NSCategory, "City")},
		SomeProperty{Property: "Population", Inner: Value{Comparator: Geq, Value: ir.NewTypedLiteral("1000", ir.XSDInteger)}},
		&Disjunction{Parts: []Description{Namespace{Index: 0}, Thing{}}},
	}}

	result := Validate(d)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 3, result.Depth)
}

func TestValidateWarnings(t *testing.T) {
	tests := []struct {
		name    string
		desc    Description
		warning string
	}{
		{"nil", nil, "$: nil description"},
		{"nil part", Conjunction{Parts: []Description{nil}}, "$.and[0]: nil description"},
		{"empty property", SomeProperty{Inner: Thing{}}, "$: property restriction without a property"},
		{"missing value", Value{Property: "P"}, "$: value restriction without a value"},
		{"bad comparator", Value{Comparator: Comparator(42), Value: ir.NewLiteral("x")}, "$: unknown comparator 42"},
		{"like on page", Value{Comparator: Like, Value: ir.NewResource("http://x")}, "$: pattern comparator ~ on a page value matches its IRI"},
		{"empty class", Class{}, "$: class without a category"},
		{"negative namespace", Namespace{Index: -1}, "$: negative namespace index -1"},
		{"nested", Disjunction{Parts: []Description{Thing{}, SomeProperty{Property: "P", Inner: Concept{}}}}, "$.or[1].some: concept without a title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.desc)
			assert.False(t, result.Valid)
			assert.Contains(t, result.Warnings, tt.warning)
		})
	}
}
