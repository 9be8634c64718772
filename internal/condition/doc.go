// Package condition provides the intermediate form between a description and
// SPARQL text.
//
// Every description lowers to exactly one Condition:
//
//   - Where: graph patterns, possibly with attached FILTERs
//   - Filter: a FILTER expression only, nothing binds the result variable
//   - Singleton: the result variable is fixed to one element
//   - False: matches nothing
//   - True: matches everything
//
// Patterns and expressions are kept structured rather than as strings, so
// builders can substitute variables and a Renderer can produce text for a
// dialect. The SPARQL renderer in this package is deterministic: equal trees
// render to byte-identical text.
package condition
