package postgres

import (
	"context"
	"database/sql"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// factStore implements driven.FactStore.
type factStore struct {
	store *Store
}

var _ driven.FactStore = (*factStore)(nil)

const insertFact = `
	INSERT INTO facts (subject, predicate, name, value)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (subject, predicate, name, value) DO NOTHING
`

// AddFact inserts a single fact. Duplicates are ignored.
func (f *factStore) AddFact(ctx context.Context, fact domain.Fact) error {
	if !fact.Valid() {
		return domain.ErrInvalidInput
	}
	db, release, err := f.store.open()
	if err != nil {
		return err
	}
	defer release()

	_, err = db.ExecContext(ctx, insertFact, string(fact.Subject), fact.Kind.String(), fact.Name, fact.Value)
	return domain.NewBackendError(backendName, "insert fact", err)
}

// ReplaceSubject deletes the product's facts and inserts the new set in one transaction.
func (f *factStore) ReplaceSubject(ctx context.Context, product *domain.Product) error {
	if product == nil || product.ID == "" {
		return domain.ErrInvalidInput
	}
	db, release, err := f.store.open()
	if err != nil {
		return err
	}
	defer release()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewBackendError(backendName, "begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM facts WHERE subject = $1", string(product.ID)); err != nil {
		return domain.NewBackendError(backendName, "delete facts", err)
	}
	for _, fact := range product.Facts() {
		if !fact.Valid() {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertFact, string(fact.Subject), fact.Kind.String(), fact.Name, fact.Value); err != nil {
			return domain.NewBackendError(backendName, "insert fact", err)
		}
	}

	return domain.NewBackendError(backendName, "commit facts", tx.Commit())
}

// QueryIsA returns the families of a product.
func (f *factStore) QueryIsA(ctx context.Context, id domain.ProductID) ([]string, error) {
	return f.values(ctx, "query family", `
		SELECT value FROM facts WHERE subject = $1 AND predicate = $2 ORDER BY position
	`, string(id), domain.FactIsA.String())
}

// QueryCategories returns the categories of a product.
func (f *factStore) QueryCategories(ctx context.Context, id domain.ProductID) ([]string, error) {
	return f.values(ctx, "query categories", `
		SELECT value FROM facts WHERE subject = $1 AND predicate = $2 ORDER BY position
	`, string(id), domain.FactHasCategory.String())
}

// QueryAttribute returns every value of one attribute.
func (f *factStore) QueryAttribute(ctx context.Context, id domain.ProductID, name string) ([]string, error) {
	return f.values(ctx, "query attribute", `
		SELECT value FROM facts WHERE subject = $1 AND predicate = $2 AND name = $3 ORDER BY position
	`, string(id), domain.FactHasAttribute.String(), name)
}

// QueryAllAttributes returns every attribute of a product.
func (f *factStore) QueryAllAttributes(ctx context.Context, id domain.ProductID) ([]domain.Attribute, error) {
	db, release, err := f.store.open()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, `
		SELECT name, value FROM facts WHERE subject = $1 AND predicate = $2 ORDER BY position
	`, string(id), domain.FactHasAttribute.String())
	if err != nil {
		return nil, domain.NewBackendError(backendName, "query attributes", err)
	}
	defer rows.Close()

	var grouped domain.Product
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, domain.NewBackendError(backendName, "scan attribute", err)
		}
		grouped.AddAttributeValue(name, value)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewBackendError(backendName, "query attributes", err)
	}
	return grouped.Attributes, nil
}

// FindSubjectsByCategory returns the sorted IDs of products in a category.
func (f *factStore) FindSubjectsByCategory(ctx context.Context, category string) ([]domain.ProductID, error) {
	return f.subjects(ctx, "find by category", `
		SELECT DISTINCT subject FROM facts WHERE predicate = $1 AND value = $2 ORDER BY subject
	`, domain.FactHasCategory.String(), category)
}

// FindSubjectsByAttribute returns the sorted IDs of products carrying the value.
func (f *factStore) FindSubjectsByAttribute(ctx context.Context, name, value string) ([]domain.ProductID, error) {
	return f.subjects(ctx, "find by attribute", `
		SELECT DISTINCT subject FROM facts WHERE predicate = $1 AND name = $2 AND value = $3 ORDER BY subject
	`, domain.FactHasAttribute.String(), name, value)
}

// Subjects returns the sorted IDs of all stored products.
func (f *factStore) Subjects(ctx context.Context) ([]domain.ProductID, error) {
	return f.subjects(ctx, "list subjects", "SELECT DISTINCT subject FROM facts ORDER BY subject")
}

// DeleteSubject removes all facts of a product.
func (f *factStore) DeleteSubject(ctx context.Context, id domain.ProductID) error {
	db, release, err := f.store.open()
	if err != nil {
		return err
	}
	defer release()

	_, err = db.ExecContext(ctx, "DELETE FROM facts WHERE subject = $1", string(id))
	return domain.NewBackendError(backendName, "delete facts", err)
}

// Close closes the shared pool.
func (f *factStore) Close() error {
	return f.store.Close()
}

func (f *factStore) values(ctx context.Context, op, query string, args ...any) ([]string, error) {
	db, release, err := f.store.open()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewBackendError(backendName, op, err)
	}
	return scanStrings(rows, op)
}

func (f *factStore) subjects(ctx context.Context, op, query string, args ...any) ([]domain.ProductID, error) {
	values, err := f.values(ctx, op, query, args...)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.ProductID, len(values))
	for i, v := range values {
		ids[i] = domain.ProductID(v)
	}
	return ids, nil
}

func scanStrings(rows *sql.Rows, op string) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, domain.NewBackendError(backendName, op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewBackendError(backendName, op, err)
	}
	return out, nil
}
