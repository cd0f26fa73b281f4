package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driving"
	"github.com/custodia-labs/pimctx/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService finds candidates in the vector index and enriches each
// one with its complete fact set.
type RetrievalService struct {
	vectors   *VectorIndexService
	assembler *ContextAssembler
	defaultK  int
}

// NewRetrievalService creates a retrieval service.
// defaultK <= 0 uses domain.DefaultRetrieveK.
func NewRetrievalService(vectors *VectorIndexService, assembler *ContextAssembler, defaultK int) *RetrievalService {
	if defaultK <= 0 {
		defaultK = domain.DefaultRetrieveK
	}
	return &RetrievalService{
		vectors:   vectors,
		assembler: assembler,
		defaultK:  defaultK,
	}
}

// Retrieve answers query with up to k context blocks in rank order.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) (*domain.Retrieval, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, k: %d", query, k)

	if !s.vectors.Configured() || s.assembler == nil {
		return nil, fmt.Errorf("%w: vector index or embedding service missing", domain.ErrNotConfigured)
	}

	result := &domain.Retrieval{Query: query}
	if strings.TrimSpace(query) == "" {
		logger.Debug("Blank query, returning no candidates")
		return result, nil
	}
	if k <= 0 {
		k = s.defaultK
	}

	candidates, err := s.vectors.Search(ctx, query, k)
	if err != nil {
		return nil, notReady(err)
	}
	logger.Info("Found %d candidates", len(candidates))

	for _, c := range candidates {
		block, err := s.assembler.Assemble(ctx, c.ProductID)
		if err != nil {
			return nil, notReady(err)
		}
		block.Score = c.Score
		result.Blocks = append(result.Blocks, *block)
		logger.Debug("  %s (%.4f)", c.ProductID, c.Score)
	}

	return result, nil
}

// notReady reports a closed store as a configuration error so callers can
// tell "not ready" apart from a failing backend.
func notReady(err error) error {
	if errors.Is(err, domain.ErrStoreClosed) && !errors.Is(err, domain.ErrNotConfigured) {
		return fmt.Errorf("%w: %w", domain.ErrNotConfigured, err)
	}
	return err
}
