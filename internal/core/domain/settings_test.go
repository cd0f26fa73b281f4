package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStorageBackend_IsValid tests all valid and invalid backends
func TestStorageBackend_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		backend  StorageBackend
		expected bool
	}{
		{name: "memory is valid", backend: StorageMemory, expected: true},
		{name: "sqlite is valid", backend: StorageSQLite, expected: true},
		{name: "postgres is valid", backend: StoragePostgres, expected: true},
		{name: "empty string is invalid", backend: StorageBackend(""), expected: false},
		{name: "unknown backend is invalid", backend: StorageBackend("chroma"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.backend.IsValid())
		})
	}
}

func TestStorageBackend_Description(t *testing.T) {
	for _, b := range AllStorageBackends() {
		assert.NotEqual(t, unknownDescription, b.Description(), "backend %s", b)
	}
	assert.Equal(t, unknownDescription, StorageBackend("nope").Description())
}

// TestAIProvider_Capabilities tests provider capability helpers
func TestAIProvider_Capabilities(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProviderHashing.RequiresAPIKey())

	assert.True(t, AIProviderHashing.IsLocal())
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())

	assert.False(t, AIProviderHashing.IsRemote())
	assert.True(t, AIProviderOpenAI.IsRemote())

	assert.False(t, AIProvider("anthropic").IsValid())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{name: "hashing needs nothing", settings: EmbeddingSettings{Provider: AIProviderHashing}, expected: true},
		{name: "ollama without key", settings: EmbeddingSettings{Provider: AIProviderOllama}, expected: true},
		{name: "openai without key", settings: EmbeddingSettings{Provider: AIProviderOpenAI}, expected: false},
		{name: "openai with key", settings: EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"}, expected: true},
		{name: "invalid provider", settings: EmbeddingSettings{Provider: "bogus"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, StorageSQLite, s.Storage.Backend)
	assert.Equal(t, AIProviderHashing, s.Embedding.Provider)
	assert.Equal(t, "fnv-hashing", s.Embedding.Model)
	assert.Equal(t, 256, s.Embedding.Dimensions)
	assert.Equal(t, DefaultRetrieveK, s.Retrieval.DefaultK)
	assert.True(t, s.Embedding.IsConfigured())
	assert.Empty(t, s.Catalog.Paths)
}

func TestDefaultEmbeddingModels_HaveDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	for _, p := range AllEmbeddingProviders() {
		model, ok := DefaultEmbeddingModels()[p]
		require.True(t, ok, "provider %s has no default model", p)
		assert.Positive(t, dims[model], "model %s has no dimensions", model)
	}
}
