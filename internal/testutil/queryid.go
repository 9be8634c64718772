package testutil

// DefaultQueryID is returned by a FixedQueryID created with an empty id.
const DefaultQueryID = "test-query-default"

// FixedQueryID generates the same query id every time.
//
// Unlike engine.FixedGenerator, which hands out ids in sequence and panics
// when they run out, FixedQueryID never runs dry. Golden snapshots of
// repeated executions therefore stay byte-identical.
//
// Thread-safety: FixedQueryID is stateless and safe for concurrent use.
type FixedQueryID struct {
	id string
}

// NewFixedQueryID creates a fixed query id generator.
//
// The id is typically set in the scenario YAML:
//
//	query_id: "q-cities-0001"
func NewFixedQueryID(id string) *FixedQueryID {
	if id == "" {
		id = DefaultQueryID
	}
	return &FixedQueryID{id: id}
}

// Generate returns the fixed id. It satisfies engine.QueryIDGenerator.
func (g *FixedQueryID) Generate() string {
	return g.id
}
