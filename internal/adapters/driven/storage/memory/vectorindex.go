package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/pimctx/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type vectorEntry struct {
	doc  domain.EmbeddingDocument
	norm float64
}

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Search compares the query against every stored vector.
type VectorIndex struct {
	mu         sync.RWMutex
	closed     bool
	dimensions int
	entries    map[domain.ProductID]vectorEntry
}

// NewVectorIndex creates an index for vectors of the given size.
// A dimensions value of 0 accepts the size of the first upserted vector.
func NewVectorIndex(dimensions int) *VectorIndex {
	return &VectorIndex{
		dimensions: dimensions,
		entries:    make(map[domain.ProductID]vectorEntry),
	}
}

// Upsert stores documents, replacing entries with the same ProductID.
func (v *VectorIndex) Upsert(_ context.Context, docs []domain.EmbeddingDocument) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return domain.ErrStoreClosed
	}
	for _, doc := range docs {
		if doc.ProductID == "" {
			return fmt.Errorf("%w: embedding document without product id", domain.ErrInvalidInput)
		}
		if v.dimensions == 0 {
			v.dimensions = len(doc.Embedding)
		}
		if len(doc.Embedding) != v.dimensions {
			return fmt.Errorf("%w: vector for %s has %d dimensions, index has %d",
				domain.ErrInvalidInput, doc.ProductID, len(doc.Embedding), v.dimensions)
		}
	}
	for _, doc := range docs {
		doc.Embedding = append([]float32(nil), doc.Embedding...)
		v.entries[doc.ProductID] = vectorEntry{doc: doc, norm: vecmath.Norm(doc.Embedding)}
	}
	return nil
}

// Delete removes the entry for a product.
func (v *VectorIndex) Delete(_ context.Context, id domain.ProductID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return domain.ErrStoreClosed
	}
	delete(v.entries, id)
	return nil
}

// Search returns the k most similar entries.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return nil, domain.ErrStoreClosed
	}
	if k <= 0 || len(v.entries) == 0 {
		return nil, nil
	}
	if len(query) != v.dimensions {
		return nil, fmt.Errorf("%w: index holds %d-dim vectors, query has %d; re-ingest the catalog",
			domain.ErrNotConfigured, v.dimensions, len(query))
	}

	qNorm := vecmath.Norm(query)
	hits := make([]driven.VectorHit, 0, len(v.entries))
	for id, e := range v.entries {
		hits = append(hits, driven.VectorHit{
			ProductID:  id,
			Similarity: vecmath.Cosine(query, qNorm, e.doc.Embedding, e.norm),
		})
	}
	return vecmath.Rank(hits, k), nil
}

// Get returns the stored document for a product.
func (v *VectorIndex) Get(id domain.ProductID) (domain.EmbeddingDocument, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.entries[id]
	return e.doc, ok
}

// Count returns the number of stored entries.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return 0, domain.ErrStoreClosed
	}
	return len(v.entries), nil
}

// Close marks the index closed.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.entries = nil
	return nil
}
