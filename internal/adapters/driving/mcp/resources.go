package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for pimctx resources.
	uriScheme = "pimctx://"

	statsURI = uriScheme + "catalog/stats"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         statsURI,
		Name:        "catalog-stats",
		Description: "Number of stored products and vectors, and the embedding model",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	// Template for one product's context block.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "products/{productId}",
		Name:        "product-context",
		Description: "Family, categories and attributes of a product",
		MIMEType:    "text/plain",
	}, s.handleProductResource)

	// Template for one product's attributes.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "products/{productId}/attributes",
		Name:        "product-attributes",
		Description: "All attributes of a product as JSON",
		MIMEType:    "application/json",
	}, s.handleAttributesResource)
}

// handleStatsResource returns catalog statistics.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Catalog == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Catalog.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading catalog stats: %w", err)
	}

	info := struct {
		Products       int    `json:"products"`
		Vectors        int    `json:"vectors"`
		EmbeddingModel string `json:"embedding_model,omitempty"`
	}{stats.Products, stats.Vectors, stats.EmbeddingModel}

	return jsonResource(req.Params.URI, info)
}

// handleProductResource returns the context block of a product.
func (s *Server) handleProductResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Catalog == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract productId from URI: pimctx://products/{productId}
	id := extractProductID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	block, err := s.ports.Catalog.Describe(ctx, domain.ProductID(id))
	if err != nil {
		return nil, fmt.Errorf("describing product: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     block.Text,
		}},
	}, nil
}

// handleAttributesResource returns the attributes of a product.
func (s *Server) handleAttributesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Catalog == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract productId from URI: pimctx://products/{productId}/attributes
	id := extractAttributesProductID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	attrs, err := s.ports.Catalog.Attributes(ctx, domain.ProductID(id))
	if err != nil {
		return nil, fmt.Errorf("listing attributes: %w", err)
	}

	values := make(map[string][]string, len(attrs))
	for _, a := range attrs {
		values[a.Name] = a.Values
	}
	return jsonResource(req.Params.URI, values)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractProductID extracts the product ID from a URI like pimctx://products/{productId}.
func extractProductID(uri string) string {
	const prefix = uriScheme + "products/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractAttributesProductID extracts the product ID from a URI like
// pimctx://products/{productId}/attributes.
func extractAttributesProductID(uri string) string {
	const prefix = uriScheme + "products/"
	const suffix = "/attributes"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
