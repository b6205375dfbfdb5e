package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations must be deterministic enough that identical text yields
// vectors with cosine similarity 1.0 to each other, and must always return
// vectors of Dimensions() length.
//
// Implementations include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (all-minilm, nomic-embed-text)
//   - Hashing: the in-process deterministic fallback
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	// Every vector in the corpus must share this length.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingCache stores provider embeddings by content hash.
// Get returns domain.ErrCacheMiss when nothing is stored for the key.
type EmbeddingCache interface {
	Get(ctx context.Context, key string) ([]float32, error)
	Put(ctx context.Context, key string, vector []float32) error
}
