package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Seed(t *testing.T) {
	store := NewConfigStore(map[string]any{"storage.backend": "memory"})

	assert.Equal(t, "memory", store.GetString("storage.backend"))
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("retrieval.default_k", int64(5)))
	require.NoError(t, store.Set("embedding.requests_per_second", 2.5))
	require.NoError(t, store.Set("embedding.dimensions", 256))
	require.NoError(t, store.Set("catalog.watch", true))
	require.NoError(t, store.Set("catalog.paths", []any{"a.json", 3, "b.jsonl"}))

	assert.Equal(t, 5, store.GetInt("retrieval.default_k"))
	assert.Equal(t, 2.5, store.GetFloat("embedding.requests_per_second"))
	assert.Equal(t, 256.0, store.GetFloat("embedding.dimensions"))
	assert.True(t, store.GetBool("catalog.watch"))
	assert.Equal(t, []string{"a.json", "b.jsonl"}, store.GetStringSlice("catalog.paths"))
}

func TestConfigStore_MissingAndMistypedKeys(t *testing.T) {
	store := NewConfigStore(map[string]any{"k": "not a number"})

	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("k"))
	assert.Equal(t, 0.0, store.GetFloat("k"))
	assert.False(t, store.GetBool("k"))
	assert.Nil(t, store.GetStringSlice("k"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}
