package cli

import (
	"bytes"
	"context"
	"strings"

	catalogfile "github.com/custodia-labs/pimctx/internal/adapters/driven/catalog/file"
	"github.com/custodia-labs/pimctx/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/pimctx/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/services"
)

// testCatalog is ingested by setupTestServices.
var testCatalog = []domain.ProductRecord{
	{
		"uuid":       "p1",
		"family":     "Trail",
		"categories": []any{"Men", "Outdoor"},
		"values": map[string]any{
			"color":   []any{map[string]any{"data": "black"}, map[string]any{"data": "grey"}},
			"feature": []any{map[string]any{"data": "waterproof"}},
		},
	},
	{"id": "p2", "Type": "Road", "Color": "red", "Product Name": "Tempo Racer"},
}

// setupTestServices wires in-memory services holding testCatalog and
// returns a cleanup function that restores the previous state.
func setupTestServices() func() {
	oldIngest, oldRetrieval, oldCatalog, oldSettings := ingestService, retrievalService, catalogService, settingsService

	facts := memory.NewFactStore()
	index := memory.NewVectorIndex(0)
	embedder := hashing.NewEmbeddingService(hashing.Config{})
	vectors := services.NewVectorIndexService(index, embedder)

	ingest := services.NewIngestService(newRegistry(), facts, vectors)
	ingest.SetCatalogLoader(catalogfile.NewLoader())

	guard := services.NewGuard(
		ingest,
		services.NewRetrievalService(vectors, services.NewContextAssembler(facts), 0),
		services.NewCatalogService(facts, index, embedder),
	)
	if _, err := guard.Ingest(context.Background(), testCatalog); err != nil {
		panic(err)
	}

	ingestService, retrievalService, catalogService = guard, guard, guard
	settingsService = services.NewSettingsService(memory.NewConfigStore(), nil)

	return func() {
		ingestService, retrievalService, catalogService, settingsService = oldIngest, oldRetrieval, oldCatalog, oldSettings
		resetFlags()
	}
}

// resetFlags restores flag variables that persist between Execute calls.
func resetFlags() {
	retrieveK, retrieveJSON, retrieveRaw = 0, false, false
	factsJSON = false
	flagCatalog = nil
	flagVerbose = false
	flagTimeout = 0
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

// executeWithInput runs the root command reading stdin from input.
func executeWithInput(input string, args ...string) (string, error) {
	return executeContext(context.Background(), input, args...)
}

// executeContext runs the root command under ctx and returns its stdout.
func executeContext(ctx context.Context, input string, args ...string) (string, error) {
	stdout, _, err := executeStreams(ctx, input, args...)
	return stdout, err
}

// executeStreams runs the root command with separate stdout and stderr.
func executeStreams(ctx context.Context, input string, args ...string) (string, string, error) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// clearServices unsets every service and returns a restore function.
func clearServices() func() {
	oldIngest, oldRetrieval, oldCatalog, oldSettings := ingestService, retrievalService, catalogService, settingsService
	ingestService, retrievalService, catalogService, settingsService = nil, nil, nil, nil
	return func() {
		ingestService, retrievalService, catalogService, settingsService = oldIngest, oldRetrieval, oldCatalog, oldSettings
	}
}
