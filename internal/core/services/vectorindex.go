package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
	"github.com/custodia-labs/pimctx/internal/logger"
)

// Defaults for batched embedding during indexing.
const (
	DefaultEmbedBatchSize   = 32
	DefaultEmbedConcurrency = 4
)

// VectorIndexService turns products into embedded descriptions and answers
// free-text similarity queries against the vector index.
type VectorIndexService struct {
	index       driven.VectorIndex
	embedder    driven.EmbeddingService
	batchSize   int
	concurrency int
}

// NewVectorIndexService creates a vector index service.
// Either port may be nil; the service then reports itself unconfigured.
func NewVectorIndexService(index driven.VectorIndex, embedder driven.EmbeddingService) *VectorIndexService {
	return &VectorIndexService{
		index:       index,
		embedder:    embedder,
		batchSize:   DefaultEmbedBatchSize,
		concurrency: DefaultEmbedConcurrency,
	}
}

// SetBatching sets the EmbedBatch size and the number of batches embedded
// in parallel. Non-positive values keep the current setting.
func (s *VectorIndexService) SetBatching(batchSize, concurrency int) {
	if batchSize > 0 {
		s.batchSize = batchSize
	}
	if concurrency > 0 {
		s.concurrency = concurrency
	}
}

// Configured returns true if both the index and the embedder are set.
func (s *VectorIndexService) Configured() bool {
	return s != nil && s.index != nil && s.embedder != nil
}

// Index embeds and upserts one entry per product. Products are embedded in
// batches that may run concurrently; the upsert keeps input order.
func (s *VectorIndexService) Index(ctx context.Context, products []*domain.Product) error {
	if !s.Configured() {
		return domain.ErrNotConfigured
	}
	if len(products) == 0 {
		return nil
	}

	descriptions := make([]string, len(products))
	for i, p := range products {
		descriptions[i] = Description(p)
	}

	vectors := make([][]float32, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for start := 0; start < len(descriptions); start += s.batchSize {
		end := min(start+s.batchSize, len(descriptions))
		g.Go(func() error {
			batch, err := s.embedder.EmbedBatch(gctx, descriptions[start:end])
			if err != nil {
				return err
			}
			if len(batch) != end-start {
				return domain.NewBackendError(s.embedder.ModelName(), "embed batch",
					fmt.Errorf("got %d vectors for %d descriptions", len(batch), end-start))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("embedding descriptions: %w", err)
	}

	docs := make([]domain.EmbeddingDocument, len(products))
	for i, p := range products {
		docs[i] = domain.EmbeddingDocument{
			ProductID:   p.ID,
			Description: descriptions[i],
			Embedding:   vectors[i],
			Metadata: map[string]string{
				"id":     p.ID.String(),
				"family": p.Family,
			},
		}
	}

	if err := s.index.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("upserting vectors: %w", err)
	}
	logger.Debug("Indexed %d product descriptions", len(docs))
	return nil
}

// Search returns at most k candidates for queryText, best first with ties
// ordered by ascending ProductID. k <= 0, a blank query, or a query the
// embedder maps to the zero vector yields no candidates.
func (s *VectorIndexService) Search(ctx context.Context, queryText string, k int) ([]domain.Candidate, error) {
	if !s.Configured() {
		return nil, domain.ErrNotConfigured
	}
	if k <= 0 || strings.TrimSpace(queryText) == "" {
		return nil, nil
	}

	vec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if isZero(vec) {
		logger.Debug("Query %q has no embeddable features", queryText)
		return nil, nil
	}

	hits, err := s.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching vectors: %w", err)
	}

	candidates := make([]domain.Candidate, len(hits))
	for i, h := range hits {
		candidates[i] = domain.Candidate{ProductID: h.ProductID, Score: h.Similarity}
	}
	domain.SortCandidates(candidates)
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Description renders the text embedded for a product.
func Description(p *domain.Product) string {
	var b strings.Builder

	if p.Family != "" {
		fmt.Fprintf(&b, "Product %s is a %s item.", p.ID, p.Family)
	} else {
		fmt.Fprintf(&b, "Product %s.", p.ID)
	}

	if len(p.Categories) > 0 {
		fmt.Fprintf(&b, " It belongs to categories: %s.", strings.Join(p.Categories, ", "))
	}

	var attrs []string
	for _, a := range p.Attributes {
		for _, v := range a.Values {
			attrs = append(attrs, a.Name+" is "+v)
		}
	}
	if len(attrs) > 0 {
		fmt.Fprintf(&b, " Attributes: %s.", strings.Join(attrs, ", "))
	}

	return b.String()
}

func isZero(vec []float32) bool {
	for _, x := range vec {
		if x != 0 {
			return false
		}
	}
	return true
}
