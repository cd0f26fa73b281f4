package driving

import (
	"context"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// IngestService populates the fact store and vector index from raw records.
type IngestService interface {
	// Ingest normalises and upserts records. Malformed records are skipped
	// and listed in the report; backend failures abort with an error.
	Ingest(ctx context.Context, records []domain.ProductRecord) (*domain.IngestReport, error)

	// IngestFiles loads records from catalog files and ingests them as one batch.
	IngestFiles(ctx context.Context, paths ...string) (*domain.IngestReport, error)
}
