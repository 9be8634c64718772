// Package store provides SQLite-backed storage for wiki metadata.
//
// The store answers the lookups the query layer delegates:
//   - Entities: exported IRI -> wiki page (engine.EntityResolver)
//   - Property labels: property id -> label used in IRIs
//     (querysparql.PropertyLabelResolver)
//   - Concepts: concept page -> stored description document
//     (querysparql.ConceptResolver, via Store.Concepts)
//
// Data is loaded with the Put* methods or in bulk from a YAML bundle with
// ImportFile.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema changes are applied as versioned migrations tracked in
// PRAGMA user_version.
package store
