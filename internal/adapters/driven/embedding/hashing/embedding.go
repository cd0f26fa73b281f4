// Package hashing provides a deterministic, offline embedding service based
// on feature hashing. It needs no model download and no network, which makes
// it the default provider and the one used in tests.
package hashing

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "fnv-hashing"
	DefaultDimensions = 256

	// bigramWeight scales adjacent-word features relative to single words.
	bigramWeight = 0.5
)

// Config holds configuration for the hashing embedding service.
type Config struct {
	// Dimensions is the vector size (default: 256).
	Dimensions int
}

// EmbeddingService maps text to a signed bag of hashed word and word-pair
// features, normalised to unit length.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a new hashing embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: cfg.Dimensions}
}

// Embed generates a vector embedding for the given text.
// Text without any word yields the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, s.dimensions)
	tokens := Tokenize(text)
	for i, tok := range tokens {
		s.add(vec, tok, 1)
		if i > 0 {
			s.add(vec, tokens[i-1]+" "+tok, bigramWeight)
		}
	}

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)

	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out, nil
	}
	for i, x := range vec {
		out[i] = float32(x / norm)
	}
	return out, nil
}

// add hashes a feature to a bucket. One hash bit picks the sign so that
// collisions tend to cancel rather than accumulate.
func (s *EmbeddingService) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	var sum [8]byte
	v := binary.BigEndian.Uint64(h.Sum(sum[:0]))

	bucket := int(v % uint64(s.dimensions))
	if v&(1<<63) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return DefaultModel
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// Tokenize lowercases text and splits it into letter and digit runs.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
