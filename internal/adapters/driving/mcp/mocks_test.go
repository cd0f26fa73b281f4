package mcp

import (
	"context"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	result *domain.Retrieval
	err    error
	gotK   int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, k int) (*domain.Retrieval, error) {
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.Retrieval{Query: query}, nil
	}
	return m.result, nil
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	values     []string
	ids        []domain.ProductID
	attributes []domain.Attribute
	block      *domain.ContextBlock
	stats      *driving.CatalogStats
	err        error

	gotAttribute string
}

func (m *mockCatalogService) Family(_ context.Context, _ domain.ProductID) ([]string, error) {
	return m.values, m.err
}

func (m *mockCatalogService) Categories(_ context.Context, _ domain.ProductID) ([]string, error) {
	return m.values, m.err
}

func (m *mockCatalogService) Attribute(_ context.Context, _ domain.ProductID, name string) ([]string, error) {
	m.gotAttribute = name
	return m.values, m.err
}

func (m *mockCatalogService) Attributes(_ context.Context, _ domain.ProductID) ([]domain.Attribute, error) {
	return m.attributes, m.err
}

func (m *mockCatalogService) FindByCategory(_ context.Context, _ string) ([]domain.ProductID, error) {
	return m.ids, m.err
}

func (m *mockCatalogService) FindByAttribute(_ context.Context, name, _ string) ([]domain.ProductID, error) {
	m.gotAttribute = name
	return m.ids, m.err
}

func (m *mockCatalogService) Describe(_ context.Context, id domain.ProductID) (*domain.ContextBlock, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.block != nil {
		return m.block, nil
	}
	return &domain.ContextBlock{ProductID: id, Text: "Product ID: " + id.String()}, nil
}

func (m *mockCatalogService) Stats(_ context.Context) (*driving.CatalogStats, error) {
	return m.stats, m.err
}
