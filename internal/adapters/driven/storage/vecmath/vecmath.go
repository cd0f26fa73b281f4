// Package vecmath holds the exact cosine ranking shared by the vector index
// adapters that do not rank inside their database.
package vecmath

import (
	"math"
	"sort"

	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// Norm returns the Euclidean length of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b given their norms.
// Zero vectors have similarity 0 with everything.
func Cosine(a []float32, normA float64, b []float32, normB float64) float64 {
	if normA == 0 || normB == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}

// Rank orders hits by descending similarity, breaking ties by ascending
// ProductID, and keeps at most k of them.
func Rank(hits []driven.VectorHit, k int) []driven.VectorHit {
	if k <= 0 {
		return nil
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ProductID < hits[j].ProductID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
