package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/logger"
)

// NoMatchesText is returned by get_product_context when nothing matches.
const NoMatchesText = "No matching products found for your query."

// ContextInput is the input schema for the get_product_context tool.
type ContextInput struct {
	Query string `json:"query" jsonschema:"what the user is looking for, e.g. 'waterproof trail shoes'"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of products to return (default 3)"`
}

// ContextOutput is the output schema for the get_product_context tool.
type ContextOutput struct {
	Context  string           `json:"context"`
	Products []ProductSummary `json:"products"`
	Count    int              `json:"count"`
}

// ProductSummary identifies one retrieved product and its similarity.
type ProductSummary struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
}

// ProductInput names a single product.
type ProductInput struct {
	ProductID string `json:"product_id" jsonschema:"the product identifier"`
}

// AttributeInput names one attribute of a product.
type AttributeInput struct {
	ProductID string `json:"product_id" jsonschema:"the product identifier"`
	Attribute string `json:"attribute" jsonschema:"attribute name, e.g. 'color' or 'Product Name'"`
}

// CategoryInput names a category.
type CategoryInput struct {
	Category string `json:"category" jsonschema:"the category to list products for"`
}

// AttributeValueInput names an attribute value to match.
type AttributeValueInput struct {
	Attribute string `json:"attribute" jsonschema:"attribute name"`
	Value     string `json:"value" jsonschema:"attribute value to match exactly"`
}

// ValuesOutput lists fact values.
type ValuesOutput struct {
	ProductID string   `json:"product_id"`
	Values    []string `json:"values"`
}

// ProductsOutput lists product identifiers.
type ProductsOutput struct {
	ProductIDs []string `json:"product_ids"`
	Count      int      `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "get_product_context",
		Description: "Retrieves catalog context for products relevant to a free-text query. " +
			"Returns each product's family, categories and attributes.",
	}, s.handleProductContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_product_family",
		Description: "Returns the family (product type) of a product",
	}, s.handleProductFamily)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_product_categories",
		Description: "Returns the categories of a product",
	}, s.handleProductCategories)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_product_attribute",
		Description: "Returns every value of one attribute of a product",
	}, s.handleProductAttribute)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_products_by_category",
		Description: "Lists the products in a category",
	}, s.handleFindByCategory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_products_by_attribute",
		Description: "Lists the products carrying an attribute value",
	}, s.handleFindByAttribute)
}

// handleProductContext handles the get_product_context tool invocation.
func (s *Server) handleProductContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ContextInput,
) (*mcp.CallToolResult, ContextOutput, error) {
	logger.Info("get_product_context: %q", input.Query)

	if strings.TrimSpace(input.Query) == "" {
		return nil, ContextOutput{}, fmt.Errorf("%w: query", ErrMissingArgument)
	}

	result, err := s.ports.Retrieval.Retrieve(ctx, input.Query, input.K)
	if err != nil {
		logger.Error("get_product_context failed: %v", err)
		return nil, ContextOutput{}, fmt.Errorf("retrieving product context: %w", err)
	}

	output := ContextOutput{
		Products: make([]ProductSummary, len(result.Blocks)),
		Count:    len(result.Blocks),
	}
	for i, b := range result.Blocks {
		output.Products[i] = ProductSummary{ProductID: b.ProductID.String(), Score: b.Score}
	}

	if result.Empty() {
		logger.Info("No matching products found")
		output.Context = NoMatchesText
	} else {
		output.Context = result.Text()
		logger.Info("Retrieved %d characters of context", len(output.Context))
	}

	return textResult(output.Context), output, nil
}

// handleProductFamily handles the get_product_family tool invocation.
func (s *Server) handleProductFamily(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProductInput,
) (*mcp.CallToolResult, ValuesOutput, error) {
	if err := s.requireCatalog(input.ProductID, "product_id"); err != nil {
		return nil, ValuesOutput{}, err
	}
	values, err := s.ports.Catalog.Family(ctx, domain.ProductID(input.ProductID))
	if err != nil {
		return nil, ValuesOutput{}, fmt.Errorf("querying family: %w", err)
	}
	return nil, ValuesOutput{ProductID: input.ProductID, Values: nonNil(values)}, nil
}

// handleProductCategories handles the get_product_categories tool invocation.
func (s *Server) handleProductCategories(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProductInput,
) (*mcp.CallToolResult, ValuesOutput, error) {
	if err := s.requireCatalog(input.ProductID, "product_id"); err != nil {
		return nil, ValuesOutput{}, err
	}
	values, err := s.ports.Catalog.Categories(ctx, domain.ProductID(input.ProductID))
	if err != nil {
		return nil, ValuesOutput{}, fmt.Errorf("querying categories: %w", err)
	}
	return nil, ValuesOutput{ProductID: input.ProductID, Values: nonNil(values)}, nil
}

// handleProductAttribute handles the get_product_attribute tool invocation.
func (s *Server) handleProductAttribute(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AttributeInput,
) (*mcp.CallToolResult, ValuesOutput, error) {
	if err := s.requireCatalog(input.ProductID, "product_id"); err != nil {
		return nil, ValuesOutput{}, err
	}
	if strings.TrimSpace(input.Attribute) == "" {
		return nil, ValuesOutput{}, fmt.Errorf("%w: attribute", ErrMissingArgument)
	}
	values, err := s.ports.Catalog.Attribute(ctx, domain.ProductID(input.ProductID), input.Attribute)
	if err != nil {
		return nil, ValuesOutput{}, fmt.Errorf("querying attribute: %w", err)
	}
	return nil, ValuesOutput{ProductID: input.ProductID, Values: nonNil(values)}, nil
}

// handleFindByCategory handles the find_products_by_category tool invocation.
func (s *Server) handleFindByCategory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CategoryInput,
) (*mcp.CallToolResult, ProductsOutput, error) {
	if err := s.requireCatalog(input.Category, "category"); err != nil {
		return nil, ProductsOutput{}, err
	}
	ids, err := s.ports.Catalog.FindByCategory(ctx, input.Category)
	if err != nil {
		return nil, ProductsOutput{}, fmt.Errorf("finding products: %w", err)
	}
	return nil, productsOutput(ids), nil
}

// handleFindByAttribute handles the find_products_by_attribute tool invocation.
func (s *Server) handleFindByAttribute(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AttributeValueInput,
) (*mcp.CallToolResult, ProductsOutput, error) {
	if err := s.requireCatalog(input.Attribute, "attribute"); err != nil {
		return nil, ProductsOutput{}, err
	}
	ids, err := s.ports.Catalog.FindByAttribute(ctx, input.Attribute, input.Value)
	if err != nil {
		return nil, ProductsOutput{}, fmt.Errorf("finding products: %w", err)
	}
	return nil, productsOutput(ids), nil
}

// requireCatalog checks that fact lookups are possible and the key argument is set.
func (s *Server) requireCatalog(arg, name string) error {
	if s.ports.Catalog == nil {
		return ErrMissingCatalogService
	}
	if strings.TrimSpace(arg) == "" {
		return fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func productsOutput(ids []domain.ProductID) ProductsOutput {
	out := ProductsOutput{ProductIDs: make([]string, len(ids)), Count: len(ids)}
	for i, id := range ids {
		out.ProductIDs[i] = id.String()
	}
	return out
}

// nonNil keeps empty lists as [] in JSON output.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
