package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Path(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pimctx", "config.toml"), store.Path())
}

func TestNewConfigStore_CreatesNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep")

	_, err := NewConfigStore(nestedPath)
	require.NoError(t, err)

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("embedding.provider", "openai"))
	require.NoError(t, store.Set("embedding.batch_size", 32))
	require.NoError(t, store.Set("embedding.requests_per_second", 2.5))
	require.NoError(t, store.Set("catalog.watch", true))
	require.NoError(t, store.Set("catalog.paths", []string{"a.json", "b.yaml"}))

	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, 32, store.GetInt("embedding.batch_size"))
	assert.InDelta(t, 2.5, store.GetFloat("embedding.requests_per_second"), 1e-9)
	assert.InDelta(t, 32.0, store.GetFloat("embedding.batch_size"), 1e-9)
	assert.True(t, store.GetBool("catalog.watch"))
	assert.Equal(t, []string{"a.json", "b.yaml"}, store.GetStringSlice("catalog.paths"))

	// Wrong types and missing keys yield zero values.
	assert.Empty(t, store.GetString("embedding.batch_size"))
	assert.Zero(t, store.GetInt("embedding.provider"))
	assert.Zero(t, store.GetInt("embedding.requests_per_second"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("embedding.provider"))
	assert.Nil(t, store.GetStringSlice("embedding.provider"))

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("storage.backend", "sqlite"))
	require.NoError(t, store.Set("retrieval.default_k", 5))
	require.NoError(t, store.Set("catalog.paths", []string{"catalog.json"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[storage]")
	assert.Contains(t, string(raw), "[retrieval]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", reloaded.GetString("storage.backend"))
	assert.Equal(t, 5, reloaded.GetInt("retrieval.default_k"))
	assert.Equal(t, []string{"catalog.json"}, reloaded.GetStringSlice("catalog.paths"))
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[embedding]
provider = "ollama"
batch_size = 16.0

[storage]
backend = "postgres"
postgres_dsn = "postgres://localhost/pimctx"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, 16, store.GetInt("embedding.batch_size"))
	assert.Equal(t, "postgres://localhost/pimctx", store.GetString("storage.postgres_dsn"))
}

func TestConfigStore_EmptyOrCommentOnlyFile(t *testing.T) {
	for _, content := range []string{"", "# Just a comment\n\n"} {
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

		store, err := NewConfigStore(tmpDir)
		require.NoError(t, err)

		_, ok := store.Get("any_key")
		assert.False(t, ok)
	}
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("storage.backend", "memory"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SetConflictingKey(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("embedding.provider", "hashing"))

	err := store.Set("embedding", "flat")

	assert.Error(t, err)
	_, ok := store.Get("embedding")
	assert.False(t, ok, "failed Set must not leave the value behind")
	assert.Equal(t, "hashing", store.GetString("embedding.provider"))
}

func TestConfigStore_SetUnmarshallableValue(t *testing.T) {
	store := newStore(t)

	err := store.Set("channel", make(chan int))

	assert.Error(t, err)
}

func TestConfigStore_SetWriteError(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("storage.backend", "sqlite"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	err := store.Set("storage.backend", "memory")

	assert.Error(t, err)
	assert.Equal(t, "sqlite", store.GetString("storage.backend"))
}

func TestConfigStore_LoadReplacesData(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("storage.backend", "sqlite"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[storage]\nbackend = \"memory\"\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, "memory", store.GetString("storage.backend"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml ][}{"), 0600))
	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "concurrent.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		assert.Equal(t, i, store.GetInt("concurrent.key"+string(rune('0'+i))))
	}
}

func TestUnflattenMap(t *testing.T) {
	nested, err := unflattenMap(map[string]any{
		"a.b.c": 1,
		"a.d":   "x",
		"e":     true,
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": "x",
		},
		"e": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "e": true}, flattenMap(nested, ""))
}
