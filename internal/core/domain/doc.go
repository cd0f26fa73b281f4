// Package domain defines the core business entities for pimctx.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ProductRecord: A raw catalog record in legacy or flat shape
//   - Product: The canonical form every record normalises to
//   - Fact: A (subject, predicate, object) triple held by the fact store
//   - EmbeddingDocument: A product description with its vector
//   - Candidate: A scored vector search hit
//   - ContextBlock and Retrieval: The assembled answer to a query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
