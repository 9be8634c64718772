// Package harness runs query scenarios end to end.
//
// A scenario names a query file, an optional wiki bundle and the answers a
// scripted SPARQL endpoint gives. The harness imports the bundle into an
// in-memory store, starts the endpoint, runs the query through the real
// engine and evaluates the scenario assertions against what happened.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: big_cities
//	description: "Concept expansion reaches the endpoint as one query"
//	bundle: bundles/cities.yaml
//	query_id: q-big-cities
//	options:
//	  subcategory_inference: true
//	query:
//	  description:
//	    concept: Big cities
//	  limit: 2
//	responses:
//	  - body: |
//	      <sparql xmlns="http://www.w3.org/2005/sparql-results#">...</sparql>
//	assertions:
//	  - type: requests
//	    count: 1
//	  - type: sparql_contains
//	    text: "rdf:type wiki:Category-3ACities"
//	  - type: items
//	    items: [Berlin, Paris]
//
// # Assertion Types
//
//   - sparql_contains: a sent query (or the DEBUG text) contains text
//   - requests: the endpoint received exactly count requests
//   - items: the result items, as prefixed titles, in order
//   - count: the COUNT result
//   - further_results: whether more results exist past the limit
//   - error_contains: some result error contains text
//   - no_errors: the result carries no errors
//
// # Deterministic Testing
//
// Every scenario runs with a fixed query id (query_id, or
// testutil.DefaultQueryID) and a fresh in-memory database, so snapshots of
// repeated runs are byte-identical. RunWithGolden compares the snapshot
// with testdata/golden/<name>.golden; run the tests with -update to
// regenerate them.
package harness
