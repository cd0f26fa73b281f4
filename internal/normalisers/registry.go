package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches records to the normaliser registered for their shape.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[domain.RecordShape]driven.RecordNormaliser
}

// NewRegistry creates a registry with the given normalisers.
func NewRegistry(normalisers ...driven.RecordNormaliser) *Registry {
	r := &Registry{normalisers: make(map[domain.RecordShape]driven.RecordNormaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser, replacing any previous one for its shape.
func (r *Registry) Register(n driven.RecordNormaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers[n.Shape()] = n
}

// SupportedShapes returns the registered shapes in ascending order.
func (r *Registry) SupportedShapes() []domain.RecordShape {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shapes := make([]domain.RecordShape, 0, len(r.normalisers))
	for s := range r.normalisers {
		shapes = append(shapes, s)
	}
	sort.Slice(shapes, func(i, j int) bool { return shapes[i] < shapes[j] })
	return shapes
}

// Normalise detects the record shape and dispatches it.
func (r *Registry) Normalise(ctx context.Context, record domain.ProductRecord) (*domain.Product, error) {
	shape := record.Shape()

	r.mu.RLock()
	n, ok := r.normalisers[shape]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s record", domain.ErrUnsupportedType, shape)
	}
	return n.Normalise(ctx, record)
}
