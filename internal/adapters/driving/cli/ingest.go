package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest catalog files",
	Long: `Loads product records from JSON, JSON Lines or YAML files, normalises
them into facts and embeds them into the vector index.

Re-ingesting a product replaces its stored facts and vector. Records that
cannot be normalised are reported and skipped; the rest of the batch is kept.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	report, err := ingestService.IngestFiles(ctx, args...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *domain.IngestReport) {
	stdout := cmd.OutOrStdout()
	st := stylesFor(stdout)

	fmt.Fprintln(stdout, st.Success.Render(fmt.Sprintf("Ingested %d products from %d records.",
		report.Products, report.Records)))

	if report.Skipped() == 0 {
		return
	}
	fmt.Fprintln(stdout, st.Warning.Render(fmt.Sprintf("Skipped %d records:", report.Skipped())))
	for _, e := range report.Errors {
		fmt.Fprintf(stdout, "  %s\n", e.Error())
	}
}
