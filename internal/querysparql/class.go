package querysparql

import (
	"strconv"

	"github.com/roach88/wikisparql/internal/condition"
	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
)

// ClassConditionBuilder lowers Class to a grouped rdf:type triple. With
// subcategory inference enabled the type is matched through
// rdfs:subClassOf*.
type ClassConditionBuilder struct{}

func (ClassConditionBuilder) CanHandle(d queryir.Description) bool {
	_, ok := queryir.Unwrap(d).(queryir.Class)
	return ok
}

func (ClassConditionBuilder) Build(b *Builder, d queryir.Description) condition.Condition {
	class := queryir.Unwrap(d).(queryir.Class)
	category := class.Category
	if category.Title == "" {
		b.AddError("class without a category")
		return &condition.False{}
	}
	category.Namespace = ir.NSCategory
	categoryTerm := condition.Const{Element: b.Vocabulary().EntityResource(category)}
	result := condition.Var(b.ResultVariable())

	var triple condition.Triple
	if b.Options().SubcategoryInference {
		triple = condition.NewTriple(result, condition.Path{Steps: []condition.PathStep{
			{Predicate: condition.RDFType},
			{Predicate: condition.RDFSSubClassOf, Modifier: "*"},
		}}, categoryTerm)
	} else {
		triple = condition.NewTriple(result, condition.RDFType, categoryTerm)
	}

	return &condition.Where{
		Meta:     condition.Meta{Safe: true, Weight: 2},
		Patterns: []condition.Pattern{condition.Group{Patterns: []condition.Pattern{triple}}},
	}
}

// NamespaceConditionBuilder lowers Namespace to a grouped
// swivt:wikiNamespace triple with an xsd:integer object.
type NamespaceConditionBuilder struct{}

func (NamespaceConditionBuilder) CanHandle(d queryir.Description) bool {
	_, ok := queryir.Unwrap(d).(queryir.Namespace)
	return ok
}

func (NamespaceConditionBuilder) Build(b *Builder, d queryir.Description) condition.Condition {
	ns := queryir.Unwrap(d).(queryir.Namespace)
	index := condition.Const{Element: ir.NewTypedLiteral(strconv.Itoa(ns.Index), ir.XSDInteger)}

	c := &condition.Where{
		Meta: condition.Meta{Safe: true, Weight: 2},
		Patterns: []condition.Pattern{condition.Group{Patterns: []condition.Pattern{
			condition.NewTriple(condition.Var(b.ResultVariable()), condition.SwivtNamespace, index),
		}}},
	}
	c.AddNamespaces(ns.Index)
	return c
}

// ConceptConditionBuilder expands a Concept into its stored definition.
// Unknown concepts match nothing. Expansion nested deeper than
// Options.MaxConceptDepth stops with False and a recorded error, which also
// ends self-referencing concepts.
type ConceptConditionBuilder struct{}

func (ConceptConditionBuilder) CanHandle(d queryir.Description) bool {
	_, ok := queryir.Unwrap(d).(queryir.Concept)
	return ok
}

func (ConceptConditionBuilder) Build(b *Builder, d queryir.Description) condition.Condition {
	concept := queryir.Unwrap(d).(queryir.Concept)
	if b.concepts == nil {
		b.AddError("concept %s cannot be expanded: no concept store", concept.Entity)
		return &condition.False{}
	}
	definition, ok := b.concepts.Concept(concept.Entity)
	if !ok || definition == nil {
		return &condition.False{}
	}
	if b.conceptDepth >= b.opts.MaxConceptDepth {
		b.AddError("concept %s nested deeper than %d levels", concept.Entity, b.opts.MaxConceptDepth)
		return &condition.False{}
	}

	b.conceptDepth++
	defer func() { b.conceptDepth-- }()
	return b.Lower(definition)
}
