// Package sqlite provides a SQLite-based implementation of the fact store
// and the vector index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share one database
// connection:
//
//   - FactStore: Canonical facts in the facts table
//   - VectorIndex: Product embeddings in the embeddings table
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Search
//
// Vector search is exact. Every stored embedding is decoded and compared
// with the query, which suits catalogs up to a few hundred thousand products.
//
// # Data Location
//
// By default, the database is stored at ~/.pimctx/data/pimctx.db
package sqlite
