// Package storage opens the fact store and vector index for the configured
// backend. The backend packages live underneath: memory, sqlite and postgres.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pimctx/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pimctx/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/pimctx/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// Stores holds the opened persistence ports.
type Stores struct {
	Facts   driven.FactStore
	Vectors driven.VectorIndex

	// Location describes where data lives, for display.
	Location string

	closers []func() error
}

// Close releases all resources held by Stores.
func (s *Stores) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open creates the stores for the configured backend.
// dimensions fixes the in-memory index size; zero adopts the first vector's size.
func Open(ctx context.Context, settings domain.StorageSettings, dimensions int) (*Stores, error) {
	switch settings.Backend {
	case domain.StorageMemory:
		facts := memory.NewFactStore()
		vectors := memory.NewVectorIndex(dimensions)
		return &Stores{
			Facts:    facts,
			Vectors:  vectors,
			Location: "memory",
			closers:  []func() error{facts.Close, vectors.Close},
		}, nil

	case domain.StorageSQLite, "":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Facts:    store.FactStore(),
			Vectors:  store.VectorIndex(),
			Location: store.Path(),
			closers:  []func() error{store.Close},
		}, nil

	case domain.StoragePostgres:
		store, err := postgres.NewStore(ctx, settings.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Facts:    store.FactStore(),
			Vectors:  store.VectorIndex(),
			Location: "postgres",
			closers:  []func() error{store.Close},
		}, nil

	default:
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}
