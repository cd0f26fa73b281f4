package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driving"
)

// Ensure Guard implements the interfaces.
var (
	_ driving.IngestService    = (*Guard)(nil)
	_ driving.RetrievalService = (*Guard)(nil)
	_ driving.CatalogService   = (*Guard)(nil)
)

// Guard serialises ingestion against queries. Ingestion takes the write
// lock; retrieval and catalog lookups share the read lock, so a query never
// observes a half-ingested batch. Every front-end shares one Guard.
type Guard struct {
	mu        sync.RWMutex
	ingest    driving.IngestService
	retrieval driving.RetrievalService
	catalog   driving.CatalogService
}

// NewGuard wraps the three services behind one lock.
func NewGuard(
	ingest driving.IngestService,
	retrieval driving.RetrievalService,
	catalog driving.CatalogService,
) *Guard {
	return &Guard{
		ingest:    ingest,
		retrieval: retrieval,
		catalog:   catalog,
	}
}

// Ingest runs under the write lock.
func (g *Guard) Ingest(ctx context.Context, records []domain.ProductRecord) (*domain.IngestReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ingest.Ingest(ctx, records)
}

// IngestFiles runs under the write lock.
func (g *Guard) IngestFiles(ctx context.Context, paths ...string) (*domain.IngestReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ingest.IngestFiles(ctx, paths...)
}

// Retrieve runs under the read lock.
func (g *Guard) Retrieve(ctx context.Context, query string, k int) (*domain.Retrieval, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.retrieval.Retrieve(ctx, query, k)
}

// Family runs under the read lock.
func (g *Guard) Family(ctx context.Context, id domain.ProductID) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog.Family(ctx, id)
}

// Categories runs under the read lock.
func (g *Guard) Categories(ctx context.Context, id domain.ProductID) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog.Categories(ctx, id)
}

// Attribute runs under the read lock.
func (g *Guard) Attribute(ctx context.Context, id domain.ProductID, name string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog.Attribute(ctx, id, name)
}

// Attributes runs under the read lock.
func (g *Guard) Attributes(ctx context.Context, id domain.ProductID) ([]domain.Attribute, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog.Attributes(ctx, id)
}

// FindByCategory runs under the read lock.
func (g *Guard) FindByCategory(ctx context.Context, category string) ([]domain.ProductID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog.FindByCategory(ctx, category)
}

// FindByAttribute runs under the read lock.
func (g *Guard) FindByAttribute(ctx context.Context, name, value string) ([]domain.ProductID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog.FindByAttribute(ctx, name, value)
}

// Describe runs under the read lock.
func (g *Guard) Describe(ctx context.Context, id domain.ProductID) (*domain.ContextBlock, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog.Describe(ctx, id)
}

// Stats runs under the read lock.
func (g *Guard) Stats(ctx context.Context) (*driving.CatalogStats, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog.Stats(ctx)
}
