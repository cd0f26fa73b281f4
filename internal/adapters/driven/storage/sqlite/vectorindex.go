package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/pimctx/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
	"github.com/custodia-labs/pimctx/internal/logger"
)

// vectorIndex implements driven.VectorIndex.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert stores documents, replacing rows with the same product id.
func (v *vectorIndex) Upsert(ctx context.Context, docs []domain.EmbeddingDocument) error {
	if len(docs) == 0 {
		return nil
	}
	db, release, err := v.store.open()
	if err != nil {
		return err
	}
	defer release()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewBackendError(backendName, "begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings (product_id, description, embedding, dimensions, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(product_id) DO UPDATE SET
			description = excluded.description,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions,
			metadata = excluded.metadata,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return domain.NewBackendError(backendName, "prepare upsert", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		if doc.ProductID == "" {
			return domain.ErrInvalidInput
		}
		metadataJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return domain.NewBackendError(backendName, "marshal metadata", err)
		}
		if _, err := stmt.ExecContext(ctx, string(doc.ProductID), doc.Description,
			float32SliceToBytes(doc.Embedding), len(doc.Embedding), string(metadataJSON)); err != nil {
			return domain.NewBackendError(backendName, "upsert embedding", err)
		}
	}

	return domain.NewBackendError(backendName, "commit embeddings", tx.Commit())
}

// Delete removes the row for a product.
func (v *vectorIndex) Delete(ctx context.Context, id domain.ProductID) error {
	db, release, err := v.store.open()
	if err != nil {
		return err
	}
	defer release()

	_, err = db.ExecContext(ctx, "DELETE FROM embeddings WHERE product_id = ?", string(id))
	return domain.NewBackendError(backendName, "delete embedding", err)
}

// Search scans every stored embedding and returns the k most similar.
// Rows whose size differs from the query are skipped; when every row is
// skipped the index was built by another embedder and Search fails with
// domain.ErrNotConfigured.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	db, release, err := v.store.open()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, "SELECT product_id, embedding FROM embeddings")
	if err != nil {
		return nil, domain.NewBackendError(backendName, "scan embeddings", err)
	}
	defer rows.Close()

	qNorm := vecmath.Norm(query)
	var hits []driven.VectorHit
	skipped := 0
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, domain.NewBackendError(backendName, "scan embedding", err)
		}
		vec := bytesToFloat32Slice(blob)
		if len(vec) != len(query) {
			skipped++
			continue
		}
		hits = append(hits, driven.VectorHit{
			ProductID:  domain.ProductID(id),
			Similarity: vecmath.Cosine(query, qNorm, vec, vecmath.Norm(vec)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewBackendError(backendName, "scan embeddings", err)
	}
	if skipped > 0 && len(hits) == 0 {
		return nil, fmt.Errorf("%w: index holds %d embeddings of another size than the query (%d); re-ingest the catalog",
			domain.ErrNotConfigured, skipped, len(query))
	}
	if skipped > 0 {
		logger.Warn("sqlite: skipped %d embeddings with a different size than the query (%d); re-ingest the catalog", skipped, len(query))
	}

	return vecmath.Rank(hits, k), nil
}

// Get returns the stored document for a product.
func (v *vectorIndex) Get(ctx context.Context, id domain.ProductID) (*domain.EmbeddingDocument, error) {
	db, release, err := v.store.open()
	if err != nil {
		return nil, err
	}
	defer release()

	var doc domain.EmbeddingDocument
	var blob []byte
	var metadataJSON string
	err = db.QueryRowContext(ctx, `
		SELECT product_id, description, embedding, metadata FROM embeddings WHERE product_id = ?
	`, string(id)).Scan(&doc.ProductID, &doc.Description, &blob, &metadataJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewBackendError(backendName, "get embedding", err)
	}
	doc.Embedding = bytesToFloat32Slice(blob)
	if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
		return nil, domain.NewBackendError(backendName, "unmarshal metadata", err)
	}
	return &doc, nil
}

// Count returns the number of stored embeddings.
func (v *vectorIndex) Count(ctx context.Context) (int, error) {
	db, release, err := v.store.open()
	if err != nil {
		return 0, err
	}
	defer release()

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&n); err != nil {
		return 0, domain.NewBackendError(backendName, "count embeddings", err)
	}
	return n, nil
}

// Close closes the shared database.
func (v *vectorIndex) Close() error {
	return v.store.Close()
}
