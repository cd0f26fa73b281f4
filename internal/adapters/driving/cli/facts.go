package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

var factsJSON bool

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Query stored product facts",
	Long: `Direct lookups against the fact store. Unknown products and attributes
return an empty result, never an error.`,
}

var factsFamilyCmd = &cobra.Command{
	Use:   "family [product-id]",
	Short: "Show the family of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFactsValues(cmd, func(ctx context.Context) ([]string, error) {
			return catalogService.Family(ctx, domain.ProductID(args[0]))
		})
	},
}

var factsCategoriesCmd = &cobra.Command{
	Use:   "categories [product-id]",
	Short: "Show the categories of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFactsValues(cmd, func(ctx context.Context) ([]string, error) {
			return catalogService.Categories(ctx, domain.ProductID(args[0]))
		})
	},
}

var factsAttributeCmd = &cobra.Command{
	Use:   "attribute [product-id] [name]",
	Short: "Show every value of one attribute",
	Long: `Shows every value of one attribute. The name is matched the way ingestion
stores it, so "Product Name" and "product_name" are the same attribute.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFactsValues(cmd, func(ctx context.Context) ([]string, error) {
			return catalogService.Attribute(ctx, domain.ProductID(args[0]), args[1])
		})
	},
}

var factsAttributesCmd = &cobra.Command{
	Use:   "attributes [product-id]",
	Short: "Show all attributes of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runFactsAttributes,
}

var factsFindCategoryCmd = &cobra.Command{
	Use:   "find-category [category]",
	Short: "List products in a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFactsIDs(cmd, func(ctx context.Context) ([]domain.ProductID, error) {
			return catalogService.FindByCategory(ctx, args[0])
		})
	},
}

var factsFindAttributeCmd = &cobra.Command{
	Use:   "find-attribute [name] [value]",
	Short: "List products carrying an attribute value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFactsIDs(cmd, func(ctx context.Context) ([]domain.ProductID, error) {
			return catalogService.FindByAttribute(ctx, args[0], args[1])
		})
	},
}

var factsDescribeCmd = &cobra.Command{
	Use:   "describe [product-id]",
	Short: "Show the context block of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runFactsDescribe,
}

var factsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Args:  cobra.NoArgs,
	RunE:  runFactsStats,
}

func init() {
	factsCmd.PersistentFlags().BoolVar(&factsJSON, "json", false, "output results as JSON")
	factsCmd.AddCommand(factsFamilyCmd)
	factsCmd.AddCommand(factsCategoriesCmd)
	factsCmd.AddCommand(factsAttributeCmd)
	factsCmd.AddCommand(factsAttributesCmd)
	factsCmd.AddCommand(factsFindCategoryCmd)
	factsCmd.AddCommand(factsFindAttributeCmd)
	factsCmd.AddCommand(factsDescribeCmd)
	factsCmd.AddCommand(factsStatsCmd)
	rootCmd.AddCommand(factsCmd)
}

func requireCatalog() error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}
	return nil
}

func runFactsValues(cmd *cobra.Command, query func(context.Context) ([]string, error)) error {
	stdout := cmd.OutOrStdout()
	if err := requireCatalog(); err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	values, err := query(ctx)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if factsJSON {
		if values == nil {
			values = []string{}
		}
		return printJSON(cmd, values)
	}
	if len(values) == 0 {
		fmt.Fprintln(stdout, "(none)")
		return nil
	}
	for _, v := range values {
		fmt.Fprintln(stdout, v)
	}
	return nil
}

func runFactsIDs(cmd *cobra.Command, query func(context.Context) ([]domain.ProductID, error)) error {
	return runFactsValues(cmd, func(ctx context.Context) ([]string, error) {
		ids, err := query(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = id.String()
		}
		return out, nil
	})
}

func runFactsAttributes(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	if err := requireCatalog(); err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	attrs, err := catalogService.Attributes(ctx, domain.ProductID(args[0]))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if factsJSON {
		values := make(map[string][]string, len(attrs))
		for _, a := range attrs {
			values[a.Name] = a.Values
		}
		return printJSON(cmd, values)
	}
	if len(attrs) == 0 {
		fmt.Fprintln(stdout, "(none)")
		return nil
	}
	st := stylesFor(stdout)
	for _, a := range attrs {
		fmt.Fprintf(stdout, "%s: %s\n", st.Label.Render(a.Name), strings.Join(a.Values, ", "))
	}
	return nil
}

func runFactsDescribe(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	if err := requireCatalog(); err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	block, err := catalogService.Describe(ctx, domain.ProductID(args[0]))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	fmt.Fprintln(stdout, block.Text)
	return nil
}

func runFactsStats(cmd *cobra.Command, _ []string) error {
	stdout := cmd.OutOrStdout()
	if err := requireCatalog(); err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	stats, err := catalogService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if factsJSON {
		return printJSON(cmd, stats)
	}

	fmt.Fprintf(stdout, "Products: %d\n", stats.Products)
	if stats.Vectors >= 0 {
		fmt.Fprintf(stdout, "Vectors: %d\n", stats.Vectors)
	} else {
		fmt.Fprintln(stdout, "Vectors: (no index)")
	}
	if stats.EmbeddingModel != "" {
		fmt.Fprintf(stdout, "Embedding model: %s\n", stats.EmbeddingModel)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	stdout := cmd.OutOrStdout()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}
