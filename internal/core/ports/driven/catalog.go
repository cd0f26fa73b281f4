package driven

import (
	"context"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// CatalogLoader reads raw product records from a catalog file.
type CatalogLoader interface {
	// Load decodes every record in the file at path, in file order.
	Load(ctx context.Context, path string) ([]domain.ProductRecord, error)

	// SupportedExtensions returns the file extensions this loader reads.
	SupportedExtensions() []string
}
