package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// Ensure FactStore implements the interface.
var _ driven.FactStore = (*FactStore)(nil)

// subjectFacts holds the facts of one product in insertion order.
type subjectFacts struct {
	families   []string
	categories []string
	attributes domain.Product
}

// FactStore is an in-memory implementation of driven.FactStore.
// Facts are grouped per subject and then per predicate.
type FactStore struct {
	mu       sync.RWMutex
	closed   bool
	subjects map[domain.ProductID]*subjectFacts
}

// NewFactStore creates a new in-memory fact store.
func NewFactStore() *FactStore {
	return &FactStore{
		subjects: make(map[domain.ProductID]*subjectFacts),
	}
}

// AddFact inserts a single fact. Duplicates are ignored.
func (s *FactStore) AddFact(_ context.Context, fact domain.Fact) error {
	if !fact.Valid() {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	s.addLocked(fact)
	return nil
}

// ReplaceSubject drops the product's existing facts and stores the new set.
func (s *FactStore) ReplaceSubject(_ context.Context, product *domain.Product) error {
	if product == nil || product.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	delete(s.subjects, product.ID)
	for _, f := range product.Facts() {
		if f.Valid() {
			s.addLocked(f)
		}
	}
	return nil
}

func (s *FactStore) addLocked(f domain.Fact) {
	sf, ok := s.subjects[f.Subject]
	if !ok {
		sf = &subjectFacts{}
		s.subjects[f.Subject] = sf
	}
	switch f.Kind {
	case domain.FactIsA:
		sf.families = appendUnique(sf.families, f.Value)
	case domain.FactHasCategory:
		sf.categories = appendUnique(sf.categories, f.Value)
	case domain.FactHasAttribute:
		if !contains(sf.attributes.Attribute(f.Name), f.Value) {
			sf.attributes.AddAttributeValue(f.Name, f.Value)
		}
	}
}

// QueryIsA returns the families of a product.
func (s *FactStore) QueryIsA(_ context.Context, id domain.ProductID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	if sf, ok := s.subjects[id]; ok {
		return clone(sf.families), nil
	}
	return nil, nil
}

// QueryCategories returns the categories of a product.
func (s *FactStore) QueryCategories(_ context.Context, id domain.ProductID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	if sf, ok := s.subjects[id]; ok {
		return clone(sf.categories), nil
	}
	return nil, nil
}

// QueryAttribute returns every value of one attribute.
func (s *FactStore) QueryAttribute(_ context.Context, id domain.ProductID, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	if sf, ok := s.subjects[id]; ok {
		return clone(sf.attributes.Attribute(name)), nil
	}
	return nil, nil
}

// QueryAllAttributes returns every attribute of a product.
func (s *FactStore) QueryAllAttributes(_ context.Context, id domain.ProductID) ([]domain.Attribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	sf, ok := s.subjects[id]
	if !ok {
		return nil, nil
	}
	out := make([]domain.Attribute, len(sf.attributes.Attributes))
	for i, a := range sf.attributes.Attributes {
		out[i] = domain.Attribute{Name: a.Name, Values: clone(a.Values)}
	}
	return out, nil
}

// FindSubjectsByCategory returns the sorted IDs of products in a category.
func (s *FactStore) FindSubjectsByCategory(_ context.Context, category string) ([]domain.ProductID, error) {
	return s.find(func(sf *subjectFacts) bool {
		return contains(sf.categories, category)
	})
}

// FindSubjectsByAttribute returns the sorted IDs of products carrying the value.
func (s *FactStore) FindSubjectsByAttribute(_ context.Context, name, value string) ([]domain.ProductID, error) {
	return s.find(func(sf *subjectFacts) bool {
		return contains(sf.attributes.Attribute(name), value)
	})
}

// Subjects returns the sorted IDs of all stored products.
func (s *FactStore) Subjects(_ context.Context) ([]domain.ProductID, error) {
	return s.find(func(*subjectFacts) bool { return true })
}

func (s *FactStore) find(match func(*subjectFacts) bool) ([]domain.ProductID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	var ids []domain.ProductID
	for id, sf := range s.subjects {
		if match(sf) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// DeleteSubject removes all facts of a product.
func (s *FactStore) DeleteSubject(_ context.Context, id domain.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	delete(s.subjects, id)
	return nil
}

// Close marks the store closed and drops its contents.
func (s *FactStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subjects = nil
	return nil
}

func appendUnique(list []string, v string) []string {
	if contains(list, v) {
		return list
	}
	return append(list, v)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func clone(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return append([]string(nil), list...)
}
