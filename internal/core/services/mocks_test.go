package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts listed in vectors embed to that vector; others embed to {1, 0, 0}.
type mockEmbeddingService struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	embedErr error
	batches  [][]string
	short    bool
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, texts)
	m.mu.Unlock()

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, _ := m.Embed(ctx, t)
		out = append(out, v)
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return 3 }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	upsertErr error
	countErr  error
	upserted  []domain.EmbeddingDocument
}

func (m *mockVectorIndex) Upsert(_ context.Context, docs []domain.EmbeddingDocument) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, docs...)
	return nil
}

func (m *mockVectorIndex) Delete(_ context.Context, _ domain.ProductID) error {
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Count(_ context.Context) (int, error) {
	return len(m.upserted), m.countErr
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// failingFactStore implements driven.FactStore with every call failing.
type failingFactStore struct {
	err error
}

func newFailingFactStore() *failingFactStore {
	return &failingFactStore{err: domain.NewBackendError("mock", "query", errors.New("disk on fire"))}
}

func (f *failingFactStore) AddFact(context.Context, domain.Fact) error { return f.err }
func (f *failingFactStore) ReplaceSubject(context.Context, *domain.Product) error {
	return f.err
}
func (f *failingFactStore) QueryIsA(context.Context, domain.ProductID) ([]string, error) {
	return nil, f.err
}
func (f *failingFactStore) QueryCategories(context.Context, domain.ProductID) ([]string, error) {
	return nil, f.err
}
func (f *failingFactStore) QueryAttribute(context.Context, domain.ProductID, string) ([]string, error) {
	return nil, f.err
}
func (f *failingFactStore) QueryAllAttributes(context.Context, domain.ProductID) ([]domain.Attribute, error) {
	return nil, f.err
}
func (f *failingFactStore) FindSubjectsByCategory(context.Context, string) ([]domain.ProductID, error) {
	return nil, f.err
}
func (f *failingFactStore) FindSubjectsByAttribute(context.Context, string, string) ([]domain.ProductID, error) {
	return nil, f.err
}
func (f *failingFactStore) Subjects(context.Context) ([]domain.ProductID, error) {
	return nil, f.err
}
func (f *failingFactStore) DeleteSubject(context.Context, domain.ProductID) error { return f.err }
func (f *failingFactStore) Close() error                                          { return nil }

// mockCatalogLoader implements driven.CatalogLoader for testing.
type mockCatalogLoader struct {
	files   map[string][]domain.ProductRecord
	loadErr error
}

func (m *mockCatalogLoader) Load(_ context.Context, path string) ([]domain.ProductRecord, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	records, ok := m.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return records, nil
}

func (m *mockCatalogLoader) SupportedExtensions() []string {
	return []string{".json"}
}

// mockEmbeddingValidator implements driven.EmbeddingConfigValidator for testing.
type mockEmbeddingValidator struct {
	err    error
	called *domain.EmbeddingSettings
}

func (m *mockEmbeddingValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	m.called = config
	return m.err
}
