package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
	"github.com/custodia-labs/pimctx/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvOpenAIAPIKey overrides embedding.api_key when set.
//
//nolint:gosec // G101: This is an environment variable name, not a credential.
const EnvOpenAIAPIKey = "PIMCTX_OPENAI_API_KEY"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStorageBackend  = "storage.backend"
	keyStorageDataDir  = "storage.data_dir"
	keyStorageDSN      = "storage.postgres_dsn"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedBatchSize  = "embedding.batch_size"
	keyEmbedConcurrent = "embedding.concurrency"
	keyEmbedRPS        = "embedding.requests_per_second"
	keyRetrievalK      = "retrieval.default_k"
	keyCatalogPaths    = "catalog.paths"
	keyCatalogWatch    = "catalog.watch"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// The validator is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.Embedding.Provider)
	model := s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[provider])
	dimensions := s.getInt(keyEmbedDims, domain.EmbeddingDimensions()[model])

	apiKey := s.configStore.GetString(keyEmbedAPIKey)
	if env, ok := s.lookupEnv(EnvOpenAIAPIKey); ok && env != "" {
		apiKey = env
	}

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend:     s.getBackend(defaults.Storage.Backend),
			DataDir:     s.configStore.GetString(keyStorageDataDir),
			PostgresDSN: s.configStore.GetString(keyStorageDSN),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            apiKey,
			Dimensions:        dimensions,
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			Concurrency:       s.getInt(keyEmbedConcurrent, defaults.Embedding.Concurrency),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		Retrieval: domain.RetrievalSettings{
			DefaultK: s.getInt(keyRetrievalK, defaults.Retrieval.DefaultK),
		},
		Catalog: domain.CatalogSettings{
			Paths: s.configStore.GetStringSlice(keyCatalogPaths),
			Watch: s.configStore.GetBool(keyCatalogWatch),
		},
	}

	return settings, nil
}

// Save persists application settings.
// An API key that came from the environment is not written to the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyStorageDSN, settings.Storage.PostgresDSN},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyEmbedConcurrent, settings.Embedding.Concurrency},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyRetrievalK, settings.Retrieval.DefaultK},
		{keyCatalogPaths, settings.Catalog.Paths},
		{keyCatalogWatch, settings.Catalog.Watch},
	}

	for _, v := range values {
		if v.key == keyCatalogPaths && settings.Catalog.Paths == nil {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if key := settings.Embedding.APIKey; key != "" {
		if env, ok := s.lookupEnv(EnvOpenAIAPIKey); !ok || env != key {
			if err := s.configStore.Set(keyEmbedAPIKey, key); err != nil {
				return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
			}
		}
	}

	return nil
}

// Set updates a single setting from its string form, e.g. ("retrieval.default_k", "5").
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case keyStorageBackend:
		return s.SetStorageBackend(domain.StorageBackend(value))

	case keyEmbedProvider:
		provider := domain.AIProvider(value)
		if !provider.IsValid() {
			return fmt.Errorf("%w: embedding provider %q", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, value)

	case keyStorageDataDir, keyStorageDSN, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey:
		return s.configStore.Set(key, value)

	case keyEmbedDims, keyEmbedBatchSize, keyEmbedConcurrent, keyRetrievalK:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer, got %q", domain.ErrInvalidInput, key, value)
		}
		return s.configStore.Set(key, n)

	case keyEmbedRPS:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %q", domain.ErrInvalidInput, key, value)
		}
		return s.configStore.Set(key, f)

	case keyCatalogWatch:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false, got %q", domain.ErrInvalidInput, key, value)
		}
		return s.configStore.Set(key, b)

	case keyCatalogPaths:
		var paths []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		return s.configStore.Set(key, paths)

	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Keys returns every setting name accepted by Set.
func (s *SettingsService) Keys() []string {
	return []string{
		keyStorageBackend, keyStorageDataDir, keyStorageDSN,
		keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
		keyEmbedDims, keyEmbedBatchSize, keyEmbedConcurrent, keyEmbedRPS,
		keyRetrievalK, keyCatalogPaths, keyCatalogWatch,
	}
}

// SetStorageBackend selects the persistence backend.
func (s *SettingsService) SetStorageBackend(backend domain.StorageBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, backend)
	}
	return s.configStore.Set(keyStorageBackend, backend.String())
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		if env, ok := s.lookupEnv(EnvOpenAIAPIKey); !ok || env == "" {
			return fmt.Errorf("API key required for %s", provider)
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Set base URL based on provider type
	switch {
	case provider == domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	default:
		settings.Embedding.BaseURL = ""
	}

	if apiKey != "" {
		settings.Embedding.APIKey = apiKey
	}

	// Dimensions follow the model; unknown models use the provider's default.
	settings.Embedding.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]

	return s.Save(settings)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("invalid storage backend: %s", settings.Storage.Backend)
	}
	if settings.Storage.Backend == domain.StoragePostgres && settings.Storage.PostgresDSN == "" {
		return fmt.Errorf("storage backend %q requires %s", settings.Storage.Backend, keyStorageDSN)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if settings.Retrieval.DefaultK <= 0 {
		return fmt.Errorf("%s must be positive", keyRetrievalK)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(keyStorageBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StorageBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(keyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
