// Package storetest holds behaviour tests shared by every FactStore and
// VectorIndex adapter.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// Trail is a product with every kind of fact.
func Trail() *domain.Product {
	return &domain.Product{
		ID:         "p1",
		Family:     "Trail",
		Categories: []string{"Men", "Outdoor"},
		Attributes: []domain.Attribute{
			{Name: "color", Values: []string{"black", "grey"}},
			{Name: "brand", Values: []string{"AeroStride"}},
			{Name: "size", Values: []string{"42"}},
		},
	}
}

// Road is a second product sharing a category with Trail.
func Road() *domain.Product {
	return &domain.Product{
		ID:         "p2",
		Family:     "Road",
		Categories: []string{"Men"},
		Attributes: []domain.Attribute{{Name: "color", Values: []string{"black"}}},
	}
}

// FactStoreSuite runs the FactStore contract against stores from newStore.
func FactStoreSuite(t *testing.T, newStore func(t *testing.T) driven.FactStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("queries return stored facts", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.ReplaceSubject(ctx, Trail()))

		family, err := store.QueryIsA(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Trail"}, family)

		cats, err := store.QueryCategories(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Men", "Outdoor"}, cats)

		colors, err := store.QueryAttribute(ctx, "p1", "color")
		require.NoError(t, err)
		assert.Equal(t, []string{"black", "grey"}, colors)

		attrs, err := store.QueryAllAttributes(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, Trail().Attributes, attrs)
	})

	t.Run("unknown subject is empty not an error", func(t *testing.T) {
		store := newStore(t)

		family, err := store.QueryIsA(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, family)

		cats, err := store.QueryCategories(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, cats)

		vals, err := store.QueryAttribute(ctx, "missing", "color")
		require.NoError(t, err)
		assert.Empty(t, vals)

		attrs, err := store.QueryAllAttributes(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, attrs)

		ids, err := store.FindSubjectsByCategory(ctx, "Nothing")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("replace is idempotent", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.ReplaceSubject(ctx, Trail()))
		require.NoError(t, store.ReplaceSubject(ctx, Trail()))

		cats, err := store.QueryCategories(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Men", "Outdoor"}, cats)

		colors, err := store.QueryAttribute(ctx, "p1", "color")
		require.NoError(t, err)
		assert.Equal(t, []string{"black", "grey"}, colors)
	})

	t.Run("replace drops stale facts", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.ReplaceSubject(ctx, Trail()))

		updated := &domain.Product{ID: "p1", Family: "Hiking", Categories: []string{"Women"}}
		require.NoError(t, store.ReplaceSubject(ctx, updated))

		family, err := store.QueryIsA(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Hiking"}, family)

		colors, err := store.QueryAttribute(ctx, "p1", "color")
		require.NoError(t, err)
		assert.Empty(t, colors)

		ids, err := store.FindSubjectsByCategory(ctx, "Men")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("add fact ignores duplicates", func(t *testing.T) {
		store := newStore(t)
		fact := domain.Fact{Subject: "p3", Kind: domain.FactHasAttribute, Name: "color", Value: "red"}
		require.NoError(t, store.AddFact(ctx, fact))
		require.NoError(t, store.AddFact(ctx, fact))
		require.NoError(t, store.AddFact(ctx, domain.Fact{Subject: "p3", Kind: domain.FactHasAttribute, Name: "color", Value: "blue"}))

		vals, err := store.QueryAttribute(ctx, "p3", "color")
		require.NoError(t, err)
		assert.Equal(t, []string{"red", "blue"}, vals)
	})

	t.Run("add fact rejects invalid facts", func(t *testing.T) {
		store := newStore(t)
		err := store.AddFact(ctx, domain.Fact{Subject: "p3", Kind: domain.FactHasAttribute, Value: "red"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("find subjects", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.ReplaceSubject(ctx, Road()))
		require.NoError(t, store.ReplaceSubject(ctx, Trail()))

		men, err := store.FindSubjectsByCategory(ctx, "Men")
		require.NoError(t, err)
		assert.Equal(t, []domain.ProductID{"p1", "p2"}, men)

		black, err := store.FindSubjectsByAttribute(ctx, "color", "black")
		require.NoError(t, err)
		assert.Equal(t, []domain.ProductID{"p1", "p2"}, black)

		grey, err := store.FindSubjectsByAttribute(ctx, "color", "grey")
		require.NoError(t, err)
		assert.Equal(t, []domain.ProductID{"p1"}, grey)

		all, err := store.Subjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.ProductID{"p1", "p2"}, all)
	})

	t.Run("delete subject", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.ReplaceSubject(ctx, Trail()))
		require.NoError(t, store.DeleteSubject(ctx, "p1"))

		all, err := store.Subjects(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("closed store fails", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Close())

		_, err := store.QueryIsA(ctx, "p1")
		assert.ErrorIs(t, err, domain.ErrStoreClosed)
	})
}

// Doc builds an embedding document for tests.
func Doc(id domain.ProductID, vec ...float32) domain.EmbeddingDocument {
	return domain.EmbeddingDocument{
		ProductID:   id,
		Description: "Product " + string(id),
		Embedding:   vec,
		Metadata:    map[string]string{"id": string(id)},
	}
}

// VectorIndexSuite runs the VectorIndex contract against indexes of
// three-dimensional vectors from newIndex.
func VectorIndexSuite(t *testing.T, newIndex func(t *testing.T) driven.VectorIndex) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty index returns no hits", func(t *testing.T) {
		index := newIndex(t)

		hits, err := index.Search(ctx, []float32{1, 0, 0}, 3)
		require.NoError(t, err)
		assert.Empty(t, hits)

		n, err := index.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("search ranks by similarity", func(t *testing.T) {
		index := newIndex(t)
		require.NoError(t, index.Upsert(ctx, []domain.EmbeddingDocument{
			Doc("far", 0, 0, 1),
			Doc("near", 1, 0.1, 0),
			Doc("mid", 1, 1, 0),
		}))

		hits, err := index.Search(ctx, []float32{1, 0, 0}, 2)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, domain.ProductID("near"), hits[0].ProductID)
		assert.Equal(t, domain.ProductID("mid"), hits[1].ProductID)
		assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
	})

	t.Run("ties break by product id", func(t *testing.T) {
		index := newIndex(t)
		require.NoError(t, index.Upsert(ctx, []domain.EmbeddingDocument{
			Doc("b", 1, 0, 0),
			Doc("c", 1, 0, 0),
			Doc("a", 1, 0, 0),
		}))

		hits, err := index.Search(ctx, []float32{1, 0, 0}, 3)
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, domain.ProductID("a"), hits[0].ProductID)
		assert.Equal(t, domain.ProductID("b"), hits[1].ProductID)
		assert.Equal(t, domain.ProductID("c"), hits[2].ProductID)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		index := newIndex(t)
		require.NoError(t, index.Upsert(ctx, []domain.EmbeddingDocument{Doc("p1", 1, 0, 0)}))
		require.NoError(t, index.Upsert(ctx, []domain.EmbeddingDocument{Doc("p1", 0, 1, 0)}))

		n, err := index.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		hits, err := index.Search(ctx, []float32{0, 1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	})

	t.Run("delete", func(t *testing.T) {
		index := newIndex(t)
		require.NoError(t, index.Upsert(ctx, []domain.EmbeddingDocument{Doc("p1", 1, 0, 0), Doc("p2", 0, 1, 0)}))
		require.NoError(t, index.Delete(ctx, "p1"))

		hits, err := index.Search(ctx, []float32{1, 0, 0}, 5)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, domain.ProductID("p2"), hits[0].ProductID)
	})

	t.Run("query of another size is a configuration error", func(t *testing.T) {
		index := newIndex(t)
		require.NoError(t, index.Upsert(ctx, []domain.EmbeddingDocument{Doc("p1", 1, 0, 0), Doc("p2", 0, 1, 0)}))

		hits, err := index.Search(ctx, []float32{1, 0}, 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
		assert.True(t, domain.IsConfigurationError(err))
		assert.False(t, domain.IsBackendError(err))
		assert.Empty(t, hits)
	})

	t.Run("non-positive k returns nothing", func(t *testing.T) {
		index := newIndex(t)
		require.NoError(t, index.Upsert(ctx, []domain.EmbeddingDocument{Doc("p1", 1, 0, 0)}))

		hits, err := index.Search(ctx, []float32{1, 0, 0}, 0)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}
