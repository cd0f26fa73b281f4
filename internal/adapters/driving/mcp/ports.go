package mcp

import (
	"github.com/custodia-labs/pimctx/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval answers free-text product queries.
	Retrieval driving.RetrievalService

	// Catalog answers direct fact lookups.
	Catalog driving.CatalogService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Catalog is optional; fact tools report ErrMissingCatalogService without it
	return nil
}
