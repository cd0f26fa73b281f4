package driven

import (
	"context"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// FactStore persists canonical facts keyed by product.
// Every query is total: an unknown subject or attribute yields an empty
// result, and only backend failures produce an error.
type FactStore interface {
	// AddFact inserts a single fact. Adding an existing fact is a no-op.
	AddFact(ctx context.Context, fact domain.Fact) error

	// ReplaceSubject drops every fact of product.ID and stores the
	// product's facts in one step. This is the upsert used by ingestion.
	ReplaceSubject(ctx context.Context, product *domain.Product) error

	// QueryIsA returns the families of a product.
	QueryIsA(ctx context.Context, id domain.ProductID) ([]string, error)

	// QueryCategories returns the categories of a product in insertion order.
	QueryCategories(ctx context.Context, id domain.ProductID) ([]string, error)

	// QueryAttribute returns every value of one attribute.
	QueryAttribute(ctx context.Context, id domain.ProductID, name string) ([]string, error)

	// QueryAllAttributes returns every attribute of a product, names in
	// first-seen order and values as lists.
	QueryAllAttributes(ctx context.Context, id domain.ProductID) ([]domain.Attribute, error)

	// FindSubjectsByCategory returns the sorted IDs of products in a category.
	FindSubjectsByCategory(ctx context.Context, category string) ([]domain.ProductID, error)

	// FindSubjectsByAttribute returns the sorted IDs of products carrying
	// the given attribute value.
	FindSubjectsByAttribute(ctx context.Context, name, value string) ([]domain.ProductID, error)

	// Subjects returns the sorted IDs of every product with at least one fact.
	Subjects(ctx context.Context) ([]domain.ProductID, error)

	// DeleteSubject removes all facts of a product.
	DeleteSubject(ctx context.Context, id domain.ProductID) error

	// Close releases resources. Later calls return domain.ErrStoreClosed.
	Close() error
}
