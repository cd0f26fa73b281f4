package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pimctx/internal/adapters/driving/watcher"
	"github.com/custodia-labs/pimctx/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch [files...]",
	Short: "Re-ingest catalog files whenever they change",
	Long: `Ingests the files once, then watches them and re-ingests all of them
after any one is saved. Runs until interrupted.

Without arguments the catalog.paths setting is used.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	paths := args
	if len(paths) == 0 && settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		paths = settings.Catalog.Paths
	}
	if len(paths) == 0 {
		return errors.New("no catalog files given and catalog.paths is empty")
	}

	ctx := cmd.Context()
	report, err := ingestService.IngestFiles(ctx, paths...)
	if err != nil {
		return fmt.Errorf("initial ingestion failed: %w", err)
	}
	printReport(cmd, report)

	w := watcher.New(ingestService, func(report *domain.IngestReport, err error) {
		if err != nil {
			cmd.PrintErrf("Re-ingestion failed: %v\n", err)
			return
		}
		printReport(cmd, report)
	}, paths...)
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(stdout, "Watching %d file(s). Press Ctrl+C to stop.\n", len(paths))
	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	return nil
}
