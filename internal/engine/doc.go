// Package engine executes wiki queries against a SPARQL endpoint.
//
// The engine is the entry point of the query layer: it receives a Query
// (description, mode, limit, offset, sort keys), lowers the description
// through package querysparql, sends the resulting SPARQL text to an
// endpoint Connection and converts the FederatedResult back into wiki
// entities.
//
// Execution flow:
//  1. NONE returns an empty result; queries that already carry errors return
//     them without any endpoint call unless IgnoreQueryErrors is set
//  2. The description is lowered with a fresh Builder (variables restart at ?v1)
//  3. DEBUG stops here and returns the SPARQL text
//  4. A False condition returns an empty result without an endpoint call;
//     a Singleton condition is answered with ASK; anything else with
//     SELECT DISTINCT ?result (LIMIT limit+1, to detect further results) or
//     SELECT (COUNT(DISTINCT ?result) AS ?count)
//  5. The Converter maps rows to entity ids through an EntityResolver
//
// Failures never escape as Go errors: transport problems, partial answers,
// malformed responses and unresolvable rows are all recorded in
// QueryResult.Errors, and a QueryResult is always returned.
//
// Thread-safety: an Engine is safe for concurrent use as long as its
// Connection and resolvers are. Each call builds its own Builder.
package engine
