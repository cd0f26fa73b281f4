package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
	"github.com/custodia-labs/pimctx/internal/core/ports/driving"
	"github.com/custodia-labs/pimctx/internal/normalisers"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService answers direct fact lookups.
type CatalogService struct {
	facts     driven.FactStore
	index     driven.VectorIndex
	embedder  driven.EmbeddingService
	assembler *ContextAssembler
}

// NewCatalogService creates a catalog service.
// index and embedder are optional and only feed Stats.
func NewCatalogService(
	facts driven.FactStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
) *CatalogService {
	return &CatalogService{
		facts:     facts,
		index:     index,
		embedder:  embedder,
		assembler: NewContextAssembler(facts),
	}
}

// Family returns the families of a product.
func (s *CatalogService) Family(ctx context.Context, id domain.ProductID) ([]string, error) {
	if s.facts == nil {
		return nil, domain.ErrFactStoreUnavailable
	}
	return s.facts.QueryIsA(ctx, id)
}

// Categories returns the categories of a product.
func (s *CatalogService) Categories(ctx context.Context, id domain.ProductID) ([]string, error) {
	if s.facts == nil {
		return nil, domain.ErrFactStoreUnavailable
	}
	return s.facts.QueryCategories(ctx, id)
}

// Attribute returns every value of one attribute. The name is
// canonicalised the same way ingestion does, so "Product Name" works.
func (s *CatalogService) Attribute(ctx context.Context, id domain.ProductID, name string) ([]string, error) {
	if s.facts == nil {
		return nil, domain.ErrFactStoreUnavailable
	}
	return s.facts.QueryAttribute(ctx, id, normalisers.CanonicalName(name))
}

// Attributes returns all attributes of a product.
func (s *CatalogService) Attributes(ctx context.Context, id domain.ProductID) ([]domain.Attribute, error) {
	if s.facts == nil {
		return nil, domain.ErrFactStoreUnavailable
	}
	return s.facts.QueryAllAttributes(ctx, id)
}

// FindByCategory returns the IDs of products in a category.
func (s *CatalogService) FindByCategory(ctx context.Context, category string) ([]domain.ProductID, error) {
	if s.facts == nil {
		return nil, domain.ErrFactStoreUnavailable
	}
	return s.facts.FindSubjectsByCategory(ctx, category)
}

// FindByAttribute returns the IDs of products with the given attribute value.
func (s *CatalogService) FindByAttribute(ctx context.Context, name, value string) ([]domain.ProductID, error) {
	if s.facts == nil {
		return nil, domain.ErrFactStoreUnavailable
	}
	return s.facts.FindSubjectsByAttribute(ctx, normalisers.CanonicalName(name), value)
}

// Describe renders the context block of one product.
func (s *CatalogService) Describe(ctx context.Context, id domain.ProductID) (*domain.ContextBlock, error) {
	return s.assembler.Assemble(ctx, id)
}

// Stats summarises the stored catalog.
func (s *CatalogService) Stats(ctx context.Context) (*driving.CatalogStats, error) {
	if s.facts == nil {
		return nil, domain.ErrFactStoreUnavailable
	}

	subjects, err := s.facts.Subjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	stats := &driving.CatalogStats{Products: len(subjects), Vectors: -1}
	if s.index != nil {
		count, err := s.index.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting vectors: %w", err)
		}
		stats.Vectors = count
	}
	if s.embedder != nil {
		stats.EmbeddingModel = s.embedder.ModelName()
	}
	return stats, nil
}
