// Package queryir provides the description AST of wikisparql: the
// backend-independent form of a wiki query condition.
//
// A Description restricts the set of pages a query returns. Descriptions
// are built by callers (or decoded from YAML/CUE documents) and lowered to
// SPARQL by package querysparql:
//
//	[YAML/CUE document] → [Description] → [condition tree] → [SPARQL text]
//
// DESCRIPTION VARIANTS:
//
//   - Thing: no restriction
//   - Value(property?, comparator, element): a value comparison, either on a
//     property of the result or on the result itself when the property is empty
//   - SomeProperty(property, inner): the result has a value for property that
//     satisfies inner
//   - Class(category): the result is a member of a category
//   - Namespace(index): the result lives in a wiki namespace
//   - Concept(entity): the result satisfies the stored definition of a concept
//   - Conjunction(parts), Disjunction(parts)
//
// Description is a sealed interface: the marker method prevents external
// implementations and enables exhaustive type switches in builders. Each
// variant reports its Kind, which is the dispatch key of the builder registry.
//
// Both value and pointer forms of every variant are accepted everywhere; use
// Unwrap to normalize a description to its value form.
//
// VALIDATION:
//
// Validate walks a description and reports structural problems (nil nodes,
// empty property ids, missing values). Invalid descriptions still lower to
// SPARQL; warnings are advisory, the same way query errors are collected on
// a query rather than aborting it.
package queryir
