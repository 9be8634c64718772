package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
)

// Bundle is a YAML file of store data:
//
//	entities:
//	  - iri: http://localhost/wiki/Special:URIResolver/Berlin
//	    title: Berlin
//	labels:
//	  Has_population: Population
//	concepts:
//	  - title: "Concept:Big cities"
//	    definition:
//	      and:
//	        - class: Cities
//	        - property: Has population
//	          value: {comparator: ">=", literal: "1000000", datatype: xsd:integer}
type Bundle struct {
	Entities []BundleEntity    `yaml:"entities"`
	Labels   map[string]string `yaml:"labels"`
	Concepts []BundleConcept   `yaml:"concepts"`
}

// BundleEntity maps one IRI to a prefixed page title ("Category:Cities",
// "Berlin#_sub1"). An empty IRI is derived from the title.
type BundleEntity struct {
	IRI   string `yaml:"iri"`
	Title string `yaml:"title"`
}

// BundleConcept is one concept definition. The title may omit the
// "Concept:" prefix.
type BundleConcept struct {
	Title      string            `yaml:"title"`
	Definition *queryir.Document `yaml:"definition"`
}

// ImportStats counts the records written by an import.
type ImportStats struct {
	Entities int `json:"entities"`
	Labels   int `json:"labels"`
	Concepts int `json:"concepts"`
}

// ImportFile loads a YAML bundle and writes it in one transaction.
// vocab derives IRIs for entities that do not state one.
func (s *Store) ImportFile(ctx context.Context, path string, vocab ir.Vocabulary) (ImportStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportStats{}, fmt.Errorf("read bundle: %w", err)
	}
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return ImportStats{}, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	return s.Import(ctx, &b, vocab)
}

// Import writes a bundle in one transaction. Nothing is written when any
// record is invalid.
func (s *Store) Import(ctx context.Context, b *Bundle, vocab ir.Vocabulary) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for i, e := range b.Entities {
		if e.Title == "" {
			return ImportStats{}, fmt.Errorf("entities[%d]: missing title", i)
		}
		id := ir.ParseTitle(e.Title)
		iri := e.IRI
		if iri == "" {
			iri = vocab.EntityResource(id).IRI
		}
		if _, err := tx.ExecContext(ctx, putEntitySQL, iri, id.Namespace, id.Title, id.Subobject); err != nil {
			return ImportStats{}, fmt.Errorf("entities[%d]: %w", i, err)
		}
		stats.Entities++
	}

	for property, label := range b.Labels {
		p := ir.PropertyID(ir.NormalizeTitle(property))
		if _, err := tx.ExecContext(ctx, putLabelSQL, string(p), label); err != nil {
			return ImportStats{}, fmt.Errorf("labels[%s]: %w", property, err)
		}
		stats.Labels++
	}

	for i, c := range b.Concepts {
		id := ir.ParseTitle(c.Title)
		id.Namespace = ir.NSConcept
		if id.Title == "" {
			return ImportStats{}, fmt.Errorf("concepts[%d]: missing title", i)
		}
		if c.Definition == nil {
			return ImportStats{}, fmt.Errorf("concepts[%d] %s: missing definition", i, id)
		}
		if _, err := c.Definition.Description(vocab); err != nil {
			return ImportStats{}, fmt.Errorf("concepts[%d] %s: %w", i, id, err)
		}
		data, err := encodeConcept(id, c.Definition)
		if err != nil {
			return ImportStats{}, fmt.Errorf("concepts[%d]: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, putConceptSQL, id.Namespace, id.Title, data); err != nil {
			return ImportStats{}, fmt.Errorf("concepts[%d]: %w", i, err)
		}
		stats.Concepts++
	}

	if err := tx.Commit(); err != nil {
		return ImportStats{}, fmt.Errorf("commit import: %w", err)
	}
	return stats, nil
}
