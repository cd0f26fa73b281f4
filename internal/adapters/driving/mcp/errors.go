// Package mcp provides an MCP (Model Context Protocol) server adapter for pimctx.
// It lets AI assistants retrieve product context and query catalog facts.
package mcp

import "errors"

var (
	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrMissingCatalogService is returned by fact tools when no catalog service is wired.
	ErrMissingCatalogService = errors.New("mcp: catalog service is not configured")

	// ErrMissingArgument is returned when a required tool argument is blank.
	ErrMissingArgument = errors.New("mcp: missing argument")
)
