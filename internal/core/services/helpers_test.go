package services

import (
	"testing"

	"github.com/custodia-labs/pimctx/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/pimctx/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pimctx/internal/normalisers"
	"github.com/custodia-labs/pimctx/internal/normalisers/flat"
	"github.com/custodia-labs/pimctx/internal/normalisers/legacy"
)

// testStack wires the real in-memory adapters and the hashing embedder.
type testStack struct {
	facts     *memory.FactStore
	index     *memory.VectorIndex
	embedder  *hashing.EmbeddingService
	vectors   *VectorIndexService
	ingest    *IngestService
	retrieval *RetrievalService
	catalog   *CatalogService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	facts := memory.NewFactStore()
	index := memory.NewVectorIndex(0)
	embedder := hashing.NewEmbeddingService(hashing.Config{})
	t.Cleanup(func() {
		facts.Close()
		index.Close()
	})

	vectors := NewVectorIndexService(index, embedder)
	registry := normalisers.NewRegistry(legacy.New(), flat.New())

	return &testStack{
		facts:     facts,
		index:     index,
		embedder:  embedder,
		vectors:   vectors,
		ingest:    NewIngestService(registry, facts, vectors),
		retrieval: NewRetrievalService(vectors, NewContextAssembler(facts), 0),
		catalog:   NewCatalogService(facts, index, embedder),
	}
}
