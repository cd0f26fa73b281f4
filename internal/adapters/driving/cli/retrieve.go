package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// noMatchesText is printed when a query has no candidates.
const noMatchesText = "No matching products found for your query."

var (
	retrieveK    int
	retrieveJSON bool
	retrieveRaw  bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Retrieve product context for a query",
	Long: `Finds the products most similar to the query in the vector index and
prints every stored fact about each of them, most similar first.

Use --raw to print the context exactly as an assistant would receive it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "top-k", "k", 0, "number of products to return (0 = retrieval.default_k)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	retrieveCmd.Flags().BoolVar(&retrieveRaw, "raw", false, "print the context blocks without styling")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	query := strings.Join(args, " ")
	result, err := retrievalService.Retrieve(ctx, query, retrieveK)
	if err != nil {
		if domain.IsConfigurationError(err) {
			return fmt.Errorf("retrieval is not ready, ingest a catalog first: %w", err)
		}
		return fmt.Errorf("retrieval failed: %w", err)
	}

	switch {
	case retrieveJSON:
		return outputRetrievalJSON(cmd, result)
	case retrieveRaw:
		if result.Empty() {
			fmt.Fprintln(stdout, noMatchesText)
			return nil
		}
		fmt.Fprintln(stdout, result.Text())
		return nil
	default:
		outputRetrieval(cmd, result)
		return nil
	}
}

type retrievalJSON struct {
	Query    string      `json:"query"`
	Products []blockJSON `json:"products"`
	Context  string      `json:"context"`
}

type blockJSON struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
	Text      string  `json:"text"`
}

func outputRetrievalJSON(cmd *cobra.Command, result *domain.Retrieval) error {
	stdout := cmd.OutOrStdout()
	out := retrievalJSON{
		Query:    result.Query,
		Products: make([]blockJSON, len(result.Blocks)),
		Context:  result.Text(),
	}
	for i, b := range result.Blocks {
		out.Products[i] = blockJSON{ProductID: b.ProductID.String(), Score: b.Score, Text: b.Text}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

func outputRetrieval(cmd *cobra.Command, result *domain.Retrieval) {
	stdout := cmd.OutOrStdout()
	st := stylesFor(stdout)

	if result.Empty() {
		fmt.Fprintln(stdout, st.Muted.Render(noMatchesText))
		return
	}

	fmt.Fprintln(stdout, st.Title.Render(fmt.Sprintf("Results for %q:", result.Query)))
	fmt.Fprintln(stdout)
	for i, b := range result.Blocks {
		fmt.Fprintf(stdout, "  [%d] %s %s\n", i+1, st.Label.Render(b.ProductID.String()),
			st.Score.Render(fmt.Sprintf("(%.4f)", b.Score)))
		fmt.Fprintln(stdout, indent(st.Block.Render(b.Text), "      "))
		fmt.Fprintln(stdout)
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
