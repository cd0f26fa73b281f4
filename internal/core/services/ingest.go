package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
	"github.com/custodia-labs/pimctx/internal/core/ports/driving"
	"github.com/custodia-labs/pimctx/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService normalises raw records and upserts them into the fact store
// and the vector index.
type IngestService struct {
	registry driven.NormaliserRegistry
	facts    driven.FactStore
	vectors  *VectorIndexService
	loader   driven.CatalogLoader
}

// NewIngestService creates an ingest service.
// vectors may be nil, in which case only facts are stored.
func NewIngestService(
	registry driven.NormaliserRegistry,
	facts driven.FactStore,
	vectors *VectorIndexService,
) *IngestService {
	return &IngestService{
		registry: registry,
		facts:    facts,
		vectors:  vectors,
	}
}

// SetCatalogLoader sets the loader used by IngestFiles.
func (s *IngestService) SetCatalogLoader(loader driven.CatalogLoader) {
	s.loader = loader
}

// Ingest normalises every record, keeps the last record of each ProductID,
// replaces the stored facts of each product and re-indexes its vector.
// Re-ingesting the same records leaves the stores unchanged.
func (s *IngestService) Ingest(ctx context.Context, records []domain.ProductRecord) (*domain.IngestReport, error) {
	logger.Section("Ingestion")

	if s.facts == nil {
		return nil, domain.ErrFactStoreUnavailable
	}
	if s.registry == nil {
		return nil, fmt.Errorf("%w: no normaliser registry", domain.ErrNotConfigured)
	}

	report := &domain.IngestReport{Records: len(records)}
	products := make([]*domain.Product, 0, len(records))
	seen := make(map[domain.ProductID]int, len(records))

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		product, err := s.registry.Normalise(ctx, record)
		if err != nil {
			if domain.IsBackendError(err) {
				return nil, err
			}
			ingestErr := &domain.IngestionError{Position: i, Reason: err.Error(), Err: err}
			if product != nil {
				ingestErr.ProductID = product.ID
			}
			logger.Warn("Skipping %v", ingestErr)
			report.Errors = append(report.Errors, ingestErr)
			continue
		}

		if pos, dup := seen[product.ID]; dup {
			logger.Debug("Record %d replaces earlier record for %s", i, product.ID)
			products[pos] = product
			continue
		}
		seen[product.ID] = len(products)
		products = append(products, product)
	}

	// Vectors go first: a failing embedder leaves the fact store untouched.
	if s.vectors.Configured() {
		if err := s.vectors.Index(ctx, products); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("No vector index configured; %d products stored as facts only", len(products))
	}

	for _, p := range products {
		if err := s.facts.ReplaceSubject(ctx, p); err != nil {
			return nil, fmt.Errorf("storing facts of %s: %w", p.ID, err)
		}
	}

	report.Products = len(products)
	logger.Info("Ingested %d products from %d records (%d skipped)",
		report.Products, report.Records, report.Skipped())
	return report, nil
}

// IngestFiles loads every catalog file and ingests all records as one batch.
// Record positions in the report count across files in argument order.
func (s *IngestService) IngestFiles(ctx context.Context, paths ...string) (*domain.IngestReport, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("%w: no catalog loader", domain.ErrNotConfigured)
	}

	var records []domain.ProductRecord
	for _, path := range paths {
		loaded, err := s.loader.Load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		logger.Debug("Loaded %d records from %s", len(loaded), path)
		records = append(records, loaded...)
	}

	return s.Ingest(ctx, records)
}
