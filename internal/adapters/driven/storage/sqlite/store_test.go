package sqlite

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pimctx/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "pimctx-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func TestFactStore(t *testing.T) {
	storetest.FactStoreSuite(t, func(t *testing.T) driven.FactStore {
		store, cleanup := setupTestStore(t)
		t.Cleanup(cleanup)
		return store.FactStore()
	})
}

func TestVectorIndex(t *testing.T) {
	storetest.VectorIndexSuite(t, func(t *testing.T) driven.VectorIndex {
		store, cleanup := setupTestStore(t)
		t.Cleanup(cleanup)
		return store.VectorIndex()
	})
}

func TestNewStore_Reopen(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.FactStore().ReplaceSubject(ctx, storetest.Trail()))
	require.NoError(t, store.VectorIndex().Upsert(ctx, []domain.EmbeddingDocument{storetest.Doc("p1", 1, 0, 0)}))
	require.NoError(t, store.Close())

	// Migrations must not re-run against an existing database.
	reopened, err := NewStore(tempDir)
	require.NoError(t, err)
	defer reopened.Close()

	family, err := reopened.FactStore().QueryIsA(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Trail"}, family)

	n, err := reopened.VectorIndex().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_Path(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Contains(t, store.Path(), dbFile)
}

func TestStore_CloseIsShared(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	facts := store.FactStore()
	vectors := store.VectorIndex()
	require.NoError(t, facts.Close())
	require.NoError(t, vectors.Close())

	_, err := vectors.Count(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestVectorIndex_GetRoundTripsMetadata(t *testing.T) {
	ctx := context.Background()
	store, cleanup := setupTestStore(t)
	defer cleanup()

	index := store.VectorIndex().(*vectorIndex)
	doc := storetest.Doc("p1", 0.25, -1.5, 3)
	doc.Metadata["family"] = "Trail"
	require.NoError(t, index.Upsert(ctx, []domain.EmbeddingDocument{doc}))

	got, err := index.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, doc, *got)

	_, err = index.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVectorIndex_SkipsForeignDimensions(t *testing.T) {
	ctx := context.Background()
	store, cleanup := setupTestStore(t)
	defer cleanup()

	index := store.VectorIndex()
	require.NoError(t, index.Upsert(ctx, []domain.EmbeddingDocument{
		storetest.Doc("old", 1, 0),
		storetest.Doc("new", 1, 0, 0),
	}))

	hits, err := index.Search(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, domain.ProductID("new"), hits[0].ProductID)
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

func TestVectorIndex_ReopenedWithOtherEmbedder(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.VectorIndex().Upsert(ctx, []domain.EmbeddingDocument{storetest.Doc("p1", 1, 0, 0)}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(tempDir)
	require.NoError(t, err)
	defer reopened.Close()

	hits, err := reopened.VectorIndex().Search(ctx, []float32{1, 0}, 3)

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, hits)
}
