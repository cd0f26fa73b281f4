// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RecordNormaliser: Converts one record shape into a canonical Product
//   - NormaliserRegistry: Detects the shape and dispatches to a normaliser
//   - FactStore: Symbolic (subject, predicate, object) persistence
//   - CatalogLoader: Reads raw records from catalog files
//   - ConfigStore: Application configuration
//
// # Retrieval Interfaces
//
// These can be nil at construction time. A query issued while either is
// missing fails with domain.ErrNotConfigured rather than returning no results:
//
//   - VectorIndex: Exact cosine search over product embeddings
//   - EmbeddingService: Generates vector embeddings for descriptions and queries
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
