package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

func TestOpen_Memory(t *testing.T) {
	stores, err := Open(context.Background(), domain.StorageSettings{Backend: domain.StorageMemory}, 3)
	require.NoError(t, err)

	assert.Equal(t, "memory", stores.Location)
	require.NoError(t, stores.Close())

	_, err = stores.Facts.Subjects(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}

func TestOpen_SQLite(t *testing.T) {
	dir := t.TempDir()

	stores, err := Open(context.Background(), domain.StorageSettings{Backend: domain.StorageSQLite, DataDir: dir}, 0)
	require.NoError(t, err)
	defer stores.Close()

	assert.Equal(t, filepath.Join(dir, "pimctx.db"), stores.Location)

	count, err := stores.Vectors.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOpen_PostgresWithoutDSN(t *testing.T) {
	_, err := Open(context.Background(), domain.StorageSettings{Backend: domain.StoragePostgres}, 0)

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), domain.StorageSettings{Backend: "cassandra"}, 0)

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
