// Package results decodes SPARQL endpoint responses into FederatedResult
// values.
//
// Supported formats:
//   - SPARQL Query Results XML (application/sparql-results+xml), including
//     <boolean> answers to ASK queries
//   - SPARQL Query Results JSON (application/sparql-results+json)
//   - a bare "true" or "false" body, which some endpoints send for ASK
//
// An ASK answer of true decodes into a single row holding the literal
// "true"^^xsd:boolean; false decodes into zero rows. XML comments in a
// response are kept as result comments, which is where some endpoints
// report timeouts and partial answers.
package results
