package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
	"github.com/roach88/wikisparql/internal/querysparql"
)

// Resolve returns the entity an IRI was exported for.
// Reports false, with no error, for IRIs the store does not know.
func (s *Store) Resolve(ctx context.Context, iri string) (ir.EntityID, bool, error) {
	var id ir.EntityID
	err := s.db.QueryRowContext(ctx, `
		SELECT namespace, title, subobject
		FROM entities
		WHERE iri = ?
	`, iri).Scan(&id.Namespace, &id.Title, &id.Subobject)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.EntityID{}, false, nil
	}
	if err != nil {
		return ir.EntityID{}, false, fmt.Errorf("resolve %s: %w", iri, err)
	}
	return id, true, nil
}

// EntityIRIs returns every IRI stored for an entity, in IRI order.
//
// Returns an empty slice (not nil) if the entity is unknown.
func (s *Store) EntityIRIs(ctx context.Context, id ir.EntityID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT iri
		FROM entities
		WHERE namespace = ? AND title = ? AND subobject = ?
		ORDER BY iri COLLATE BINARY ASC
	`, id.Namespace, id.Title, id.Subobject)
	if err != nil {
		return nil, fmt.Errorf("query entity iris: %w", err)
	}
	defer rows.Close()

	iris := []string{}
	for rows.Next() {
		var iri string
		if err := rows.Scan(&iri); err != nil {
			return nil, fmt.Errorf("scan entity iri: %w", err)
		}
		iris = append(iris, iri)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entity iris: %w", err)
	}
	return iris, nil
}

// LabelContext returns the stored label of a property.
func (s *Store) LabelContext(ctx context.Context, p ir.PropertyID) (string, bool, error) {
	var label string
	err := s.db.QueryRowContext(ctx, `
		SELECT label FROM property_labels WHERE property_id = ?
	`, string(p)).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read label of %s: %w", p, err)
	}
	return label, true, nil
}

// Label implements querysparql.PropertyLabelResolver. Unknown properties
// and lookup failures return "", which makes the compiler fall back to the
// property id; failures are logged.
func (s *Store) Label(p ir.PropertyID) string {
	label, _, err := s.LabelContext(context.Background(), p)
	if err != nil {
		slog.Warn("property label lookup failed", "property", string(p), "error", err)
		return ""
	}
	return label
}

// ConceptDocument returns the stored definition of a concept.
func (s *Store) ConceptDocument(ctx context.Context, id ir.EntityID) (*queryir.Document, bool, error) {
	var definition string
	err := s.db.QueryRowContext(ctx, `
		SELECT definition FROM concepts WHERE namespace = ? AND title = ?
	`, id.Namespace, id.Title).Scan(&definition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read concept %s: %w", id, err)
	}

	var doc queryir.Document
	if err := yaml.Unmarshal([]byte(definition), &doc); err != nil {
		return nil, false, fmt.Errorf("decode concept %s: %w", id, err)
	}
	return &doc, true, nil
}

// Concepts returns a resolver that expands stored concepts against vocab.
func (s *Store) Concepts(vocab ir.Vocabulary) querysparql.ConceptResolver {
	return conceptResolver{store: s, vocab: vocab}
}

type conceptResolver struct {
	store *Store
	vocab ir.Vocabulary
}

// Concept implements querysparql.ConceptResolver. Definitions that cannot
// be read or converted are logged and treated as unknown.
func (r conceptResolver) Concept(id ir.EntityID) (queryir.Description, bool) {
	doc, ok, err := r.store.ConceptDocument(context.Background(), id)
	if err != nil {
		slog.Warn("concept lookup failed", "concept", id.String(), "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	d, err := doc.Description(r.vocab)
	if err != nil {
		slog.Warn("invalid concept definition", "concept", id.String(), "error", err)
		return nil, false
	}
	return d, true
}
