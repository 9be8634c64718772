package store

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
)

// PutEntity records that iri identifies id. An existing mapping for the
// same IRI is replaced.
func (s *Store) PutEntity(ctx context.Context, iri string, id ir.EntityID) error {
	_, err := s.db.ExecContext(ctx, putEntitySQL, iri, id.Namespace, id.Title, id.Subobject)
	if err != nil {
		return fmt.Errorf("put entity %s: %w", iri, err)
	}
	return nil
}

const putEntitySQL = `
	INSERT INTO entities (iri, namespace, title, subobject)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(iri) DO UPDATE SET
		namespace = excluded.namespace,
		title = excluded.title,
		subobject = excluded.subobject
`

// PutLabel sets the label of a property.
func (s *Store) PutLabel(ctx context.Context, p ir.PropertyID, label string) error {
	_, err := s.db.ExecContext(ctx, putLabelSQL, string(p), label)
	if err != nil {
		return fmt.Errorf("put label of %s: %w", p, err)
	}
	return nil
}

const putLabelSQL = `
	INSERT INTO property_labels (property_id, label)
	VALUES (?, ?)
	ON CONFLICT(property_id) DO UPDATE SET label = excluded.label
`

// PutConcept stores the definition of a concept.
func (s *Store) PutConcept(ctx context.Context, id ir.EntityID, definition *queryir.Document) error {
	data, err := encodeConcept(id, definition)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, putConceptSQL, id.Namespace, id.Title, data); err != nil {
		return fmt.Errorf("put concept %s: %w", id, err)
	}
	return nil
}

const putConceptSQL = `
	INSERT INTO concepts (namespace, title, definition)
	VALUES (?, ?, ?)
	ON CONFLICT(namespace, title) DO UPDATE SET definition = excluded.definition
`

func encodeConcept(id ir.EntityID, definition *queryir.Document) (string, error) {
	if definition == nil {
		return "", fmt.Errorf("put concept %s: nil definition", id)
	}
	data, err := yaml.Marshal(definition)
	if err != nil {
		return "", fmt.Errorf("encode concept %s: %w", id, err)
	}
	return string(data), nil
}
