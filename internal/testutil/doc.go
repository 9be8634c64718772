// Package testutil provides deterministic helpers for tests: a fixed query
// id generator and a scripted SPARQL endpoint that replays canned answers.
package testutil
