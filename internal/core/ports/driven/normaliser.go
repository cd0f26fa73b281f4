package driven

import (
	"context"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// RecordNormaliser converts one raw record layout into a canonical Product.
// Each normaliser handles exactly one domain.RecordShape.
type RecordNormaliser interface {
	// Shape returns the record layout this normaliser handles.
	Shape() domain.RecordShape

	// Normalise converts a raw record. A record without identity fails
	// with an error wrapping domain.ErrInvalidInput.
	Normalise(ctx context.Context, record domain.ProductRecord) (*domain.Product, error)
}
