package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
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

	for _, doc := range docs {
		if doc.ProductID == "" {
			return domain.ErrInvalidInput
		}
		metadataJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return domain.NewBackendError(backendName, "marshal metadata", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO embeddings (product_id, description, embedding, dimensions, metadata, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (product_id) DO UPDATE SET
				description = excluded.description,
				embedding = excluded.embedding,
				dimensions = excluded.dimensions,
				metadata = excluded.metadata,
				updated_at = NOW()
		`, string(doc.ProductID), doc.Description, pgvector.NewVector(doc.Embedding),
			len(doc.Embedding), string(metadataJSON))
		if err != nil {
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

	_, err = db.ExecContext(ctx, "DELETE FROM embeddings WHERE product_id = $1", string(id))
	return domain.NewBackendError(backendName, "delete embedding", err)
}

// Search ranks rows of the query's size by cosine distance in the database.
// Equal distances are ordered by product id. An index holding only vectors of
// another size fails with domain.ErrNotConfigured.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	db, release, err := v.store.open()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, `
		SELECT product_id, embedding <=> $1 AS distance
		FROM embeddings
		WHERE dimensions = $2
		ORDER BY distance, product_id
		LIMIT $3
	`, pgvector.NewVector(query), len(query), k)
	if err != nil {
		return nil, domain.NewBackendError(backendName, "search embeddings", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, domain.NewBackendError(backendName, "scan hit", err)
		}
		hits = append(hits, driven.VectorHit{ProductID: domain.ProductID(id), Similarity: 1 - distance})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewBackendError(backendName, "search embeddings", err)
	}
	if len(hits) == 0 {
		if err := v.checkDimensions(ctx, db, len(query)); err != nil {
			return nil, err
		}
	}
	return hits, nil
}

// checkDimensions reports stored vectors that can never match a query of size n.
func (v *vectorIndex) checkDimensions(ctx context.Context, db *sql.DB, n int) error {
	rows, err := db.QueryContext(ctx, "SELECT DISTINCT dimensions FROM embeddings ORDER BY dimensions")
	if err != nil {
		return domain.NewBackendError(backendName, "read dimensions", err)
	}
	defer rows.Close()

	var sizes []string
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return domain.NewBackendError(backendName, "read dimensions", err)
		}
		if d == n {
			return nil
		}
		sizes = append(sizes, strconv.Itoa(d))
	}
	if err := rows.Err(); err != nil {
		return domain.NewBackendError(backendName, "read dimensions", err)
	}
	if len(sizes) == 0 {
		return nil
	}
	return fmt.Errorf("%w: index holds %s-dim vectors, query has %d; re-ingest the catalog",
		domain.ErrNotConfigured, strings.Join(sizes, "/"), n)
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

// Close closes the shared pool.
func (v *vectorIndex) Close() error {
	return v.store.Close()
}
