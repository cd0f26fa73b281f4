package driving

import (
	"context"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// CatalogService exposes direct fact lookups on ingested products.
type CatalogService interface {
	// Family returns the families of a product.
	Family(ctx context.Context, id domain.ProductID) ([]string, error)

	// Categories returns the categories of a product.
	Categories(ctx context.Context, id domain.ProductID) ([]string, error)

	// Attribute returns every value of one attribute of a product.
	Attribute(ctx context.Context, id domain.ProductID, name string) ([]string, error)

	// Attributes returns all attributes of a product.
	Attributes(ctx context.Context, id domain.ProductID) ([]domain.Attribute, error)

	// FindByCategory returns the IDs of products in a category.
	FindByCategory(ctx context.Context, category string) ([]domain.ProductID, error)

	// FindByAttribute returns the IDs of products with the given attribute value.
	FindByAttribute(ctx context.Context, name, value string) ([]domain.ProductID, error)

	// Describe renders the context block of one product.
	Describe(ctx context.Context, id domain.ProductID) (*domain.ContextBlock, error)

	// Stats summarises the stored catalog.
	Stats(ctx context.Context) (*CatalogStats, error)
}

// CatalogStats summarises the stored catalog.
type CatalogStats struct {
	// Products is the number of products with at least one fact.
	Products int

	// Vectors is the number of entries in the vector index.
	// -1 means no vector index is configured.
	Vectors int

	// EmbeddingModel names the model used for vectors.
	EmbeddingModel string
}
