package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// ContextAssembler renders the facts of one product as a context block.
type ContextAssembler struct {
	facts driven.FactStore
}

// NewContextAssembler creates a context assembler over a fact store.
func NewContextAssembler(facts driven.FactStore) *ContextAssembler {
	return &ContextAssembler{facts: facts}
}

// Assemble queries every fact of id and renders:
//
//	Product ID: <id>
//	Family: <family>
//	Categories: <c1>, <c2>
//	Attributes: <name>: <v1>, <v2>; <name2>: <v>
//
// Lines without facts are omitted. An unknown product still yields the
// identity line; only a backend failure returns an error.
func (a *ContextAssembler) Assemble(ctx context.Context, id domain.ProductID) (*domain.ContextBlock, error) {
	if a.facts == nil {
		return nil, domain.ErrFactStoreUnavailable
	}

	families, err := a.facts.QueryIsA(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("querying family of %s: %w", id, err)
	}
	categories, err := a.facts.QueryCategories(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("querying categories of %s: %w", id, err)
	}
	attributes, err := a.facts.QueryAllAttributes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("querying attributes of %s: %w", id, err)
	}

	lines := []string{"Product ID: " + id.String()}
	if len(families) > 0 {
		lines = append(lines, "Family: "+strings.Join(families, ", "))
	}
	if len(categories) > 0 {
		lines = append(lines, "Categories: "+strings.Join(categories, ", "))
	}
	if len(attributes) > 0 {
		pairs := make([]string, len(attributes))
		for i, attr := range attributes {
			pairs[i] = attr.Name + ": " + strings.Join(attr.Values, ", ")
		}
		lines = append(lines, "Attributes: "+strings.Join(pairs, "; "))
	}

	return &domain.ContextBlock{
		ProductID: id,
		Text:      strings.Join(lines, "\n"),
	}, nil
}
