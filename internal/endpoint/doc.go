// Package endpoint talks to SPARQL endpoints over the SPARQL 1.1 protocol.
//
// HTTPConnection implements engine.Connection: it POSTs the query text as a
// form, decodes the XML or JSON answer through package results and reports
// transport trouble in-band as a FederatedResult error code. Responses can
// be kept in a badger-backed Cache keyed by an xxh3 fingerprint of endpoint
// and query text; identical requests in flight at the same time share one
// round-trip.
package endpoint
