// Package cli provides the cobra command tree for pimctx.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pimctx/internal/adapters/driven/ai"
	catalogfile "github.com/custodia-labs/pimctx/internal/adapters/driven/catalog/file"
	configfile "github.com/custodia-labs/pimctx/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pimctx/internal/adapters/driven/storage"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
	"github.com/custodia-labs/pimctx/internal/core/ports/driving"
	"github.com/custodia-labs/pimctx/internal/core/services"
	"github.com/custodia-labs/pimctx/internal/logger"
	"github.com/custodia-labs/pimctx/internal/normalisers"
	"github.com/custodia-labs/pimctx/internal/normalisers/flat"
	"github.com/custodia-labs/pimctx/internal/normalisers/legacy"
)

// skipStoresAnnotation marks commands that run without opening the stores.
const skipStoresAnnotation = "pimctx.skip-stores"

var version = "dev"

// Services shared by every command. They are set by setupServices, or
// directly by tests.
var (
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	catalogService   driving.CatalogService
	settingsService  driving.SettingsService
)

// Global flags.
var (
	flagVerbose   bool
	flagConfigDir string
	flagCatalog   []string
	flagTimeout   time.Duration
)

// closers release what setupServices opened.
var closers []func() error

var rootCmd = &cobra.Command{
	Use:   "pimctx",
	Short: "Product catalog context retrieval",
	Long: `pimctx turns a product catalog into grounded context for AI assistants.

Catalog records are normalised into facts (family, categories, attributes)
and embedded into a vector index. A query finds the most similar products
and returns every stored fact about each of them.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupServices,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "print debug logs to stderr")
	flags.StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.pimctx)")
	flags.StringSliceVar(&flagCatalog, "catalog", nil, "catalog files to ingest before the command runs")
	flags.DurationVar(&flagTimeout, "timeout", 0, "abort ingest and query commands after this long (0 = no limit)")
}

// Execute runs the root command with the given build version.
func Execute(ctx context.Context, buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, teardownServices())
}

// setupServices wires settings, stores, embedder and services for the command.
// Services already set, as in tests, are left alone.
func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	if settingsService == nil {
		configStore, err := configfile.NewConfigStore(flagConfigDir)
		if err != nil {
			return fmt.Errorf("opening config: %w", err)
		}
		settingsService = services.NewSettingsService(configStore, ai.NewConfigValidator())
		closers = append(closers, func() error {
			settingsService = nil
			return nil
		})
	}

	if cmd.Annotations[skipStoresAnnotation] == "true" {
		return nil
	}
	if retrievalService != nil {
		return ingestStartupCatalog(cmd, flagCatalog)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}

	stores, err := storage.Open(cmd.Context(), settings.Storage, embedder.Dimensions())
	if err != nil {
		_ = embedder.Close()
		return fmt.Errorf("opening %s storage: %w", settings.Storage.Backend, err)
	}
	logger.Debug("Storage: %s (%s)", settings.Storage.Backend, stores.Location)
	logger.Debug("Embedding: %s/%s (%d dims)", settings.Embedding.Provider, embedder.ModelName(), embedder.Dimensions())

	vectors := services.NewVectorIndexService(stores.Vectors, embedder)
	vectors.SetBatching(settings.Embedding.BatchSize, settings.Embedding.Concurrency)

	ingest := services.NewIngestService(newRegistry(), stores.Facts, vectors)
	ingest.SetCatalogLoader(catalogfile.NewLoader())

	guard := services.NewGuard(
		ingest,
		services.NewRetrievalService(vectors, services.NewContextAssembler(stores.Facts), settings.Retrieval.DefaultK),
		services.NewCatalogService(stores.Facts, stores.Vectors, embedder),
	)
	ingestService, retrievalService, catalogService = guard, guard, guard

	closers = append(closers, stores.Close, embedder.Close, func() error {
		ingestService, retrievalService, catalogService = nil, nil, nil
		return nil
	})

	paths := flagCatalog
	if len(paths) == 0 {
		paths = settings.Catalog.Paths
	}
	return ingestStartupCatalog(cmd, paths)
}

func newRegistry() driven.NormaliserRegistry {
	return normalisers.NewRegistry(legacy.New(), flat.New())
}

// ingestStartupCatalog loads the --catalog files, or catalog.paths, once.
func ingestStartupCatalog(cmd *cobra.Command, paths []string) error {
	if len(paths) == 0 || ingestService == nil {
		return nil
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	report, err := ingestService.IngestFiles(ctx, paths...)
	if err != nil {
		return fmt.Errorf("ingesting startup catalog: %w", err)
	}
	logger.Info("Startup catalog: %d products from %d records", report.Products, report.Records)
	return nil
}

// teardownServices closes what setupServices opened, newest first.
func teardownServices() error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	closers = nil
	return errors.Join(errs...)
}

// commandContext applies --timeout to the command context.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if flagTimeout > 0 {
		return context.WithTimeout(ctx, flagTimeout)
	}
	return context.WithCancel(ctx)
}
