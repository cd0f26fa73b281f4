// Package legacy normalises records that nest attributes under "values".
package legacy

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
	"github.com/custodia-labs/pimctx/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.RecordNormaliser = (*Normaliser)(nil)

// dataKey holds the value inside each attribute entry.
const dataKey = "data"

// Normaliser handles the legacy record layout:
//
//	{"uuid": "p1", "family": "Trail", "categories": ["Men"],
//	 "values": {"color": [{"data": "black"}]}}
type Normaliser struct{}

// New creates a new legacy normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Shape returns the record layout this normaliser handles.
func (n *Normaliser) Shape() domain.RecordShape {
	return domain.ShapeLegacy
}

// Normalise unwraps every {"data": value} entry into one attribute value.
// Entries without data are skipped. A bare value, or an attribute that is
// a single entry or scalar instead of a list, is kept as written. Top-level
// keys other than the structural ones are kept as attributes too.
func (n *Normaliser) Normalise(_ context.Context, record domain.ProductRecord) (*domain.Product, error) {
	values, ok := record[domain.LegacyValuesKey].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s record", domain.ErrUnsupportedType, record.Shape())
	}

	draft := normalisers.NewDraft(record)
	for _, name := range normalisers.SortedKeys(values) {
		entries, ok := values[name].([]any)
		if !ok {
			entries = []any{values[name]}
		}
		for _, entry := range entries {
			if s, ok := unwrap(entry); ok {
				draft.AddAttribute(name, s)
			}
		}
	}
	draft.AddTopLevel(record)

	return draft.Product()
}

func unwrap(entry any) (string, bool) {
	m, ok := entry.(map[string]any)
	if !ok {
		return normalisers.FormatValue(entry)
	}
	return normalisers.FormatValue(m[dataKey])
}
