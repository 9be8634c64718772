package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wikisparql/internal/ir"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wiki.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file should exist")

	for _, table := range []string{"entities", "property_labels", "concepts"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/wiki.db")
	require.Error(t, err)
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.PutEntity(ctx, wikiIRI("Berlin"), ir.ParseTitle("Berlin")))

	id, ok, err := s.Resolve(ctx, wikiIRI("Berlin"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Berlin", id.Title)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wiki.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.PutLabel(ctx, "Has_population", "Population"))
	require.NoError(t, s1.Close())

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "open %d", i)
		require.NoError(t, s.Close())
	}

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, "Population", s2.Label("Has_population"))
}

func TestClose(t *testing.T) {
	assert.NoError(t, (&Store{}).Close(), "nil db")

	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_ = s.Close()
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.pragma, func(t *testing.T) {
			var got string
			require.NoError(t, s.db.QueryRow("PRAGMA "+tt.pragma).Scan(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchema_Columns(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		table   string
		columns []string
	}{
		{"entities", []string{"iri", "namespace", "title", "subobject"}},
		{"property_labels", []string{"property_id", "label"}},
		{"concepts", []string{"namespace", "title", "definition"}},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.columns, tableColumns(t, s.db, tt.table))
		})
	}
}

func TestSchema_EntityIRIUnique(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO entities (iri, namespace, title) VALUES ('x', 0, 'A')`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO entities (iri, namespace, title) VALUES ('x', 0, 'B')`)
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	s := createTestStore(t)

	assert.Equal(t, schemaVersion, userVersion(t, s.db))
	assert.Contains(t, tableIndexes(t, s.db, "entities"), "idx_entities_page")
}

func TestMigrate_FromUnversioned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	// A store written before versioning: base tables, no index, version 0.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO entities (iri, namespace, title) VALUES ('http://example.org/Berlin', 0, 'Berlin')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, schemaVersion, userVersion(t, s.db))
	assert.Contains(t, tableIndexes(t, s.db, "entities"), "idx_entities_page")

	id, ok, err := s.Resolve(context.Background(), "http://example.org/Berlin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Berlin", id.Title)
}

func userVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	var v int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&v))
	return v
}

func tableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	require.NoError(t, err)
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	return cols
}

func tableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_index_list(?)", table)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}
