// Package hashing provides a deterministic in-process embedding service.
// It needs no network and no model, so it backs the matching engine when no
// provider is configured or the provider fails. Vectors reward token overlap
// only; they carry no semantic meaning beyond that.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 384
	ModelName         = "hashing"
)

// EmbeddingService hashes words into a fixed number of buckets.
// It is stateless and safe for concurrent use.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedder. A non-positive dimension
// uses DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns the unit-length vector for text. Word i (zero-based) adds
// 1/(i+1) to the bucket chosen by its FNV-1a hash. Text with no words yields
// the zero vector. The same text always yields the same bits.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	acc := make([]float64, s.dimensions)
	for i, word := range Tokenize(text) {
		acc[bucket(word, s.dimensions)] += 1.0 / float64(i+1)
	}

	var sum float64
	for _, v := range acc {
		sum += v * v
	}
	vec := make([]float32, s.dimensions)
	if sum == 0 {
		return vec, nil
	}
	norm := math.Sqrt(sum)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// EmbedBatch embeds each text independently.
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

// ModelName returns "hashing".
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// Tokenize splits text into lowercase runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func bucket(word string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return int(h.Sum32() % uint32(n))
}
