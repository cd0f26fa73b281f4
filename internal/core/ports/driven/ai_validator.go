package driven

import "github.com/custodia-labs/pimctx/internal/core/domain"

// EmbeddingConfigValidator validates embedding provider configurations.
// Implementations verify that a configuration works by testing connectivity
// to the underlying service.
type EmbeddingConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error
}
