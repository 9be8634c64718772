package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurtleName(t *testing.T) {
	v := DefaultVocabulary()

	tests := []struct {
		name     string
		input    Element
		expected string
	}{
		{"category page", v.EntityResource(NewEntityID(NSCategory, "Foo")), "wiki:Category-3AFoo"},
		{"main page", v.EntityResource(NewEntityID(NSMain, "New York")), "wiki:New_York"},
		{"property", v.PropertyResource("Has population"), "property:Has_population"},
		{"rdf type", NewResource(NSRDF + "type"), "rdf:type"},
		{"leading dash is not a local name", NewResource(DefaultWikiBase + "-2DFoo"), "<" + DefaultWikiBase + "-2DFoo>"},
		{"foreign iri", NewResource("http://example.org/x"), "<http://example.org/x>"},
		{"blank node", NewResource("_:b1"), "_:b1"},
		{"plain literal", NewLiteral("x"), `"x"`},
		{"string literal", NewTypedLiteral("x", XSDString), `"x"`},
		{"integer literal", NewTypedLiteral("12", XSDInteger), `"12"^^xsd:integer`},
		{"custom datatype", NewTypedLiteral("1", "http://example.org/dt"), `"1"^^<http://example.org/dt>`},
		{"lang literal", NewLangLiteral("chat", "fr"), `"chat"@fr`},
		{"escaped literal", NewLiteral("a\nb\\"), `"a\nb\\"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.TurtleName(tt.input))
		})
	}
}

func TestEntityFromIRI(t *testing.T) {
	v := DefaultVocabulary()

	for _, id := range []EntityID{
		NewEntityID(NSMain, "Berlin"),
		NewEntityID(NSCategory, "Capital cities"),
		NewEntityID(NSHelp, "Foo-bar"),
		{Namespace: NSMain, Title: "Paris", Subobject: "_ab12"},
	} {
		got, ok := v.EntityFromIRI(v.EntityResource(id).IRI)
		require.True(t, ok, id.String())
		assert.Equal(t, id, got)
	}

	_, ok := v.EntityFromIRI("http://example.org/other")
	assert.False(t, ok)
}

func TestPrefixesOrder(t *testing.T) {
	names := []string{}
	for _, p := range DefaultVocabulary().Prefixes() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"property", "wiki", "swivt", "rdf", "rdfs", "xsd"}, names)
}
