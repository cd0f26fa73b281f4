package driving

import (
	"context"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// RetrievalService answers free-text product queries with catalog facts.
type RetrievalService interface {
	// Retrieve finds up to k products similar to query and assembles one
	// context block per product in rank order. k <= 0 uses the configured
	// default. A Retrieval with no blocks is the EMPTY result.
	// Returns domain.ErrNotConfigured if the vector index or embedder is missing.
	Retrieve(ctx context.Context, query string, k int) (*domain.Retrieval, error)
}
