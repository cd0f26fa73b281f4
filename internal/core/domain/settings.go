package domain

const unknownDescription = "Unknown"

// StorageBackend selects where facts and vectors are persisted.
type StorageBackend string

// Available storage backends.
const (
	// StorageMemory keeps everything in process memory.
	StorageMemory StorageBackend = "memory"

	// StorageSQLite persists to a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StoragePostgres persists to PostgreSQL with pgvector.
	StoragePostgres StorageBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite, StoragePostgres:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageMemory:
		return "In-memory (lost on exit)"
	case StorageSQLite:
		return "SQLite (local file)"
	case StoragePostgres:
		return "PostgreSQL + pgvector"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an embedding provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHashing is the built-in deterministic feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// IsRemote returns true if embedding calls leave the process.
func (p AIProvider) IsRemote() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Feature hashing (built-in, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend selects the store implementation.
	Backend StorageBackend

	// DataDir is the SQLite data directory. Empty means ~/.pimctx/data.
	DataDir string

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size. Zero means the model default.
	Dimensions int

	// BatchSize is the number of descriptions per EmbedBatch call.
	BatchSize int

	// Concurrency bounds parallel EmbedBatch calls during ingestion.
	Concurrency int

	// RequestsPerSecond throttles remote providers. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings holds query behaviour configuration.
type RetrievalSettings struct {
	// DefaultK is the candidate count used when a caller passes k <= 0.
	DefaultK int
}

// CatalogSettings holds catalog source configuration.
type CatalogSettings struct {
	// Paths are catalog files ingested at startup.
	Paths []string

	// Watch re-ingests Paths whenever one of them changes.
	Watch bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Storage holds persistence settings.
	Storage StorageSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Retrieval holds query settings.
	Retrieval RetrievalSettings

	// Catalog holds catalog source settings.
	Catalog CatalogSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The defaults work offline: SQLite storage and the hashing embedder.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Embedding: EmbeddingSettings{
			Provider:    AIProviderHashing,
			Model:       DefaultEmbeddingModels()[AIProviderHashing],
			Dimensions:  EmbeddingDimensions()[DefaultEmbeddingModels()[AIProviderHashing]],
			BatchSize:   32,
			Concurrency: 4,
		},
		Retrieval: RetrievalSettings{
			DefaultK: DefaultRetrieveK,
		},
	}
}

// AllStorageBackends returns all available storage backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{
		StorageMemory,
		StorageSQLite,
		StoragePostgres,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHashing: "fnv-hashing",
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Built-in
		"fnv-hashing": 256,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
