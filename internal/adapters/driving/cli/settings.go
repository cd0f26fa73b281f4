package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, embedding and retrieval settings.

Settings live in config.toml inside the configuration directory.`,
	Annotations: map[string]string{skipStoresAnnotation: "true"},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Annotations: map[string]string{skipStoresAnnotation: "true"},
	RunE:        runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set one setting by its dotted key, for example:

  pimctx settings set storage.backend memory
  pimctx settings set retrieval.default_k 5
  pimctx settings set catalog.paths products.json,more.yaml

Run 'pimctx settings keys' to list every key.`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{skipStoresAnnotation: "true"},
	RunE:        runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List setting keys",
	Annotations: map[string]string{skipStoresAnnotation: "true"},
	RunE:        runSettingsKeys,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:         "embedding",
	Short:       "Configure embedding provider",
	Long:        `Interactively configure the embedding provider used for ingestion and queries.`,
	Annotations: map[string]string{skipStoresAnnotation: "true"},
	RunE:        runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	stdout := cmd.OutOrStdout()
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	fmt.Fprintln(stdout, "Current Settings")
	fmt.Fprintln(stdout, "================")
	fmt.Fprintln(stdout)

	// Storage settings
	fmt.Fprintln(stdout, "[Storage]")
	fmt.Fprintf(stdout, "  Backend: %s\n", settings.Storage.Backend.Description())
	switch settings.Storage.Backend {
	case domain.StorageSQLite:
		dir := settings.Storage.DataDir
		if dir == "" {
			dir = "(default)"
		}
		fmt.Fprintf(stdout, "  Data dir: %s\n", dir)
	case domain.StoragePostgres:
		fmt.Fprintf(stdout, "  DSN: %s\n", maskDSN(settings.Storage.PostgresDSN))
	}
	fmt.Fprintln(stdout)

	// Embedding settings
	fmt.Fprintln(stdout, "[Embedding]")
	fmt.Fprintf(stdout, "  Provider: %s\n", settings.Embedding.Provider.Description())
	fmt.Fprintf(stdout, "  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Dimensions > 0 {
		fmt.Fprintf(stdout, "  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	if settings.Embedding.BaseURL != "" {
		fmt.Fprintf(stdout, "  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			fmt.Fprintf(stdout, "  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			fmt.Fprintf(stdout, "  API Key: (not set)\n")
		}
	}
	fmt.Fprintf(stdout, "  Batch size: %d, concurrency: %d\n", settings.Embedding.BatchSize, settings.Embedding.Concurrency)
	if settings.Embedding.RequestsPerSecond > 0 {
		fmt.Fprintf(stdout, "  Rate limit: %g requests/s\n", settings.Embedding.RequestsPerSecond)
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	fmt.Fprintf(stdout, "  Status: %s\n", status)
	fmt.Fprintln(stdout)

	// Retrieval settings
	fmt.Fprintln(stdout, "[Retrieval]")
	fmt.Fprintf(stdout, "  Default k: %d\n", settings.Retrieval.DefaultK)
	fmt.Fprintln(stdout)

	// Catalog settings
	fmt.Fprintln(stdout, "[Catalog]")
	if len(settings.Catalog.Paths) == 0 {
		fmt.Fprintln(stdout, "  Paths: (none)")
	} else {
		fmt.Fprintf(stdout, "  Paths: %s\n", strings.Join(settings.Catalog.Paths, ", "))
	}
	fmt.Fprintf(stdout, "  Watch: %t\n", settings.Catalog.Watch)
	fmt.Fprintln(stdout)

	// Validation
	if err := settingsService.Validate(); err != nil {
		fmt.Fprintf(stdout, "Warning: %v\n", err)
		fmt.Fprintln(stdout, "Run 'pimctx settings set' to fix configuration issues.")
	} else {
		fmt.Fprintln(stdout, "Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	fmt.Fprintf(stdout, "Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	stdout := cmd.OutOrStdout()
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		fmt.Fprintln(stdout, key)
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	stdout := cmd.OutOrStdout()
	fmt.Fprintln(stdout, "Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		fmt.Fprintf(stdout, "  %d. %s\n", i+1, p.Description())
	}
	fmt.Fprint(stdout, "\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	fmt.Fprintf(stdout, "Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		fmt.Fprint(stdout, "Enter API key (blank to use $PIMCTX_OPENAI_API_KEY): ")
		apiKey = readPassword(reader)
		fmt.Fprintln(stdout)
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	fmt.Fprint(stdout, "Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		fmt.Fprintf(stdout, "FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	fmt.Fprintln(stdout, "OK")

	fmt.Fprintf(stdout, "Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	fmt.Fprintln(stdout, "Re-ingest your catalog: vectors from another model are not comparable.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func readPassword(reader *bufio.Reader) string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

// maskAPIKey masks an API key for display, showing only first and last 4 chars.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// maskDSN hides the password of a postgres connection string.
func maskDSN(dsn string) string {
	if dsn == "" {
		return "(not set)"
	}
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":****"
	}
	return dsn[:scheme+3] + creds + dsn[at:]
}
