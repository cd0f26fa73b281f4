// Package flat normalises records that keep attributes as top-level keys.
package flat

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
	"github.com/custodia-labs/pimctx/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.RecordNormaliser = (*Normaliser)(nil)

// Normaliser handles the flat record layout:
//
//	{"Brand": "AeroStride", "Product Name": "Horizon Pro 3", "Type": "Trail"}
type Normaliser struct{}

// New creates a new flat normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Shape returns the record layout this normaliser handles.
func (n *Normaliser) Shape() domain.RecordShape {
	return domain.ShapeFlat
}

// Normalise turns every non-structural key into an attribute. A scalar is
// one value and a list is one value per element.
func (n *Normaliser) Normalise(_ context.Context, record domain.ProductRecord) (*domain.Product, error) {
	if record.Shape() != domain.ShapeFlat {
		return nil, fmt.Errorf("%w: %s record", domain.ErrUnsupportedType, record.Shape())
	}

	draft := normalisers.NewDraft(record)
	draft.AddTopLevel(record)

	return draft.Product()
}
