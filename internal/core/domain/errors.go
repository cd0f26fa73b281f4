package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown record shape or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotConfigured indicates a query was issued before the vector index,
	// the embedding service or the fact store was set up. It is the
	// configuration error of the retrieval contract: callers must treat it as
	// "not ready", never as "no matches".
	ErrNotConfigured = errors.New("retrieval not configured")

	// ErrStoreClosed indicates a store was used after Close.
	ErrStoreClosed = errors.New("store closed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrFactStoreUnavailable indicates the fact store is not configured.
	ErrFactStoreUnavailable = errors.New("fact store unavailable")

	// ErrBackend is the target for errors.Is on every BackendError.
	ErrBackend = errors.New("backend failure")
)

// IngestionError describes a record that was dropped during ingestion.
// The batch it belongs to continues; the error is reported, not returned.
type IngestionError struct {
	// Position is the record's index in the ingested batch.
	Position int

	// ProductID is set when the record had an identity but was still rejected.
	ProductID ProductID

	// Reason is a short human-readable explanation.
	Reason string

	// Err is the underlying cause, usually wrapping ErrInvalidInput.
	Err error
}

// Error implements error.
func (e *IngestionError) Error() string {
	if e.ProductID != "" {
		return fmt.Sprintf("record %d (%s): %s", e.Position, e.ProductID, e.Reason)
	}
	return fmt.Sprintf("record %d: %s", e.Position, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *IngestionError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidInput
	}
	return e.Err
}

// BackendError wraps an I/O failure from a storage or embedding backend.
// It must never be turned into an empty result.
type BackendError struct {
	// Backend names the adapter, e.g. "sqlite" or "openai".
	Backend string

	// Op is the failed operation, e.g. "query facts".
	Op string

	// Err is the underlying error.
	Err error
}

// NewBackendError creates a BackendError. It returns nil when err is nil
// and leaves err untouched when it already is a BackendError.
func NewBackendError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Backend: backend, Op: op, Err: err}
}

// Error implements error.
func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrBackend.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

// IsBackendError returns true if err is or wraps a BackendError.
func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackend)
}

// IsConfigurationError returns true if err signals a missing or closed component.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrStoreClosed) ||
		errors.Is(err, ErrEmbeddingUnavailable) ||
		errors.Is(err, ErrVectorIndexUnavailable) ||
		errors.Is(err, ErrFactStoreUnavailable)
}
