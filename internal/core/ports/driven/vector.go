package driven

import (
	"context"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// VectorIndex provides semantic similarity search operations.
// Search is exact: every stored vector is compared against the query.
type VectorIndex interface {
	// Upsert stores documents, replacing any entry with the same ProductID.
	Upsert(ctx context.Context, docs []domain.EmbeddingDocument) error

	// Delete removes the entry for a product.
	Delete(ctx context.Context, id domain.ProductID) error

	// Search finds the k nearest neighbours to the query vector.
	// Hits are ordered by descending similarity, ties by ascending ProductID.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ProductID is the matched product.
	ProductID domain.ProductID

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}
