// Package ir provides the expression elements shared by every layer of wikisparql.
//
// This package contains value types only. All other internal packages
// import ir; ir imports nothing internal. This keeps the element model
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Element is sealed: only Resource and Literal implement it
//   - Elements are immutable values compared with ==
//   - Wiki titles are stored in DB-key form (NFC, underscores, upper-case first letter)
//   - IRI escaping is reversible: DecodeURI(EncodeURI(s)) == s
package ir
