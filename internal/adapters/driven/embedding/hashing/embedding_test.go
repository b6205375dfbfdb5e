package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (norm(a) * norm(b))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"cs101", "intro", "to", "cs", "fall", "2024"},
		Tokenize("CS101: Intro-to CS (Fall, 2024)"))
	assert.Empty(t, Tokenize(" -- !! "))
}

func TestEmbeddingService_Defaults(t *testing.T) {
	s := NewEmbeddingService(0)

	assert.Equal(t, DefaultDimensions, s.Dimensions())
	assert.Equal(t, "hashing", s.ModelName())
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}

func TestEmbeddingService_Embed_Deterministic(t *testing.T) {
	s := NewEmbeddingService(384)
	text := "CS101 Introduction to Computer Science Springfield University fall 2024"

	a, err := s.Embed(context.Background(), text)
	require.NoError(t, err)
	b, err := NewEmbeddingService(384).Embed(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 384)
	assert.InDelta(t, 1.0, norm(a), 1e-6)
	assert.InDelta(t, 1.0, cosine(a, b), 1e-6)
}

func TestEmbeddingService_Embed_CaseAndPunctuationInsensitive(t *testing.T) {
	s := NewEmbeddingService(128)

	a, _ := s.Embed(context.Background(), "CS101, Fall 2024")
	b, _ := s.Embed(context.Background(), "cs101 fall 2024")

	assert.Equal(t, a, b)
}

func TestEmbeddingService_Embed_PositionWeighted(t *testing.T) {
	s := NewEmbeddingService(1)

	// With a single bucket every word lands together, so the vector is
	// non-zero and unit length regardless of order.
	v, err := s.Embed(context.Background(), "b a")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v[0], 1e-6)

	s = NewEmbeddingService(4096)
	ab, _ := s.Embed(context.Background(), "alpha beta")
	ba, _ := s.Embed(context.Background(), "beta alpha")
	assert.NotEqual(t, ab, ba)
}

func TestEmbeddingService_Embed_OverlapRaisesSimilarity(t *testing.T) {
	s := NewEmbeddingService(384)
	base, _ := s.Embed(context.Background(), "CS101 Intro to CS Springfield University fall 2024")
	near, _ := s.Embed(context.Background(), "CS101 Intro to CS Springfield University spring 2024")
	far, _ := s.Embed(context.Background(), "BIO250 Marine Ecology Coastal College")

	assert.Greater(t, cosine(base, near), cosine(base, far))
}

func TestEmbeddingService_Embed_EmptyTextIsZero(t *testing.T) {
	v, err := NewEmbeddingService(16).Embed(context.Background(), "  ... ")

	require.NoError(t, err)
	assert.Equal(t, make([]float32, 16), v)
}

func TestEmbeddingService_EmbedBatch(t *testing.T) {
	s := NewEmbeddingService(32)
	vecs, err := s.EmbedBatch(context.Background(), []string{"a", "b", "a"})

	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, vecs[0], vecs[2])
}
