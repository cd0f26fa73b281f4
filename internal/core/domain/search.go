package domain

import (
	"sort"
	"strings"
)

// DefaultRetrieveK is the number of candidates retrieved when none is given.
const DefaultRetrieveK = 3

// BlockDelimiter separates context blocks in a rendered Retrieval.
const BlockDelimiter = "\n---\n"

// EmbeddingDocument is the vector index entry for one product.
type EmbeddingDocument struct {
	// ProductID is the key. Upserting the same ID replaces the entry.
	ProductID ProductID

	// Description is the text the embedding was computed from.
	Description string

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// Metadata holds the family and id of the product.
	Metadata map[string]string
}

// Candidate is a vector search hit for one product.
type Candidate struct {
	// ProductID is the matched product.
	ProductID ProductID

	// Score is the cosine similarity; higher is better.
	Score float64
}

// SortCandidates orders candidates best-first. Equal scores are ordered
// by ascending ProductID so results never depend on backend order.
func SortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		return c[i].ProductID < c[j].ProductID
	})
}

// ContextBlock is the rendered fact summary of one product.
// It exists only inside a query response and is never persisted.
type ContextBlock struct {
	// ProductID is the product the block describes.
	ProductID ProductID

	// Score is the similarity of the candidate that produced the block.
	Score float64

	// Text is the multi-line summary.
	Text string
}

// Retrieval is the result of one retrieve call. A Retrieval without
// blocks is the EMPTY result: zero candidates matched.
type Retrieval struct {
	// Query is the query text as received.
	Query string

	// Blocks holds one block per candidate in rank order.
	Blocks []ContextBlock
}

// Empty returns true if no candidate matched.
func (r *Retrieval) Empty() bool {
	return r == nil || len(r.Blocks) == 0
}

// Text concatenates the blocks in rank order. It returns an empty string
// for an EMPTY retrieval.
func (r *Retrieval) Text() string {
	if r.Empty() {
		return ""
	}
	parts := make([]string, len(r.Blocks))
	for i, b := range r.Blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, BlockDelimiter)
}

// ProductIDs returns the ranked product IDs.
func (r *Retrieval) ProductIDs() []ProductID {
	if r.Empty() {
		return nil
	}
	ids := make([]ProductID, len(r.Blocks))
	for i, b := range r.Blocks {
		ids[i] = b.ProductID
	}
	return ids
}
