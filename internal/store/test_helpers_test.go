package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// wikiIRI returns the default export IRI of a prefixed title.
func wikiIRI(title string) string {
	return ir.DefaultVocabulary().EntityResource(ir.ParseTitle(title)).IRI
}

// bigCities is a concept definition used across tests.
func bigCities() *queryir.Document {
	return &queryir.Document{And: []*queryir.Document{
		{Class: "Cities"},
		{Property: "Has population"},
	}}
}
