package engine

import (
	"context"

	"github.com/roach88/wikisparql/internal/ir"
)

// EntityResolver maps a result IRI back to a wiki entity.
// It reports false when the IRI does not identify a known entity.
type EntityResolver interface {
	Resolve(ctx context.Context, iri string) (ir.EntityID, bool, error)
}

// IRIResolver resolves IRIs by decoding them against a vocabulary.
// It needs no storage and accepts every IRI under the wiki base.
type IRIResolver struct {
	Vocabulary ir.Vocabulary
}

// Resolve implements EntityResolver.
func (r IRIResolver) Resolve(_ context.Context, iri string) (ir.EntityID, bool, error) {
	id, ok := r.Vocabulary.EntityFromIRI(iri)
	return id, ok, nil
}

// ChainResolver tries resolvers in order; the first one that knows the IRI
// wins. An error from one resolver does not stop the chain, but is returned
// when no later resolver succeeds.
type ChainResolver []EntityResolver

// Resolve implements EntityResolver.
func (c ChainResolver) Resolve(ctx context.Context, iri string) (ir.EntityID, bool, error) {
	var lastErr error
	for _, r := range c {
		id, ok, err := r.Resolve(ctx, iri)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return id, true, nil
		}
	}
	return ir.EntityID{}, false, lastErr
}
