package driven

import (
	"context"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// NormaliserRegistry detects a record's shape and dispatches it to the
// normaliser registered for that shape.
type NormaliserRegistry interface {
	// Normalise transforms a raw record using the matching normaliser.
	// Returns domain.ErrUnsupportedType when no normaliser handles the shape.
	Normalise(ctx context.Context, record domain.ProductRecord) (*domain.Product, error)

	// Register adds a normaliser, replacing any previous one for its shape.
	Register(normaliser RecordNormaliser)

	// SupportedShapes returns the shapes that can be normalised.
	SupportedShapes() []domain.RecordShape
}
