package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates two embedding vectors of different length
	// were compared, or a provider and its fallback disagree on dimensions.
	// Vectors from one generator configuration never differ, so this signals
	// a corpus consistency bug rather than bad user input.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorpusUnavailable indicates the corpus store could not be read or written.
	// A decision is never returned when this occurs.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider is not configured
	// or could not produce a vector.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCacheMiss indicates an embedding was not found in the cache.
	ErrCacheMiss = errors.New("cache miss")
)
