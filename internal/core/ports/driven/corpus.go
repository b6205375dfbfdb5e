package driven

import (
	"context"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

// CorpusStore persists signatures and embeddings.
// It is append-only from the engine's point of view: nothing is updated or
// deleted, so concurrent uploads never conflict. A recency window may miss a
// record written a moment ago by another upload; that staleness is accepted.
type CorpusStore interface {
	// AppendSignature stores a new signature and returns its ID.
	AppendSignature(ctx context.Context, sig domain.Signature) (string, error)

	// AppendEmbedding stores a new embedding and returns its ID.
	// The owning signature must already exist.
	AppendEmbedding(ctx context.Context, emb domain.Embedding) (string, error)

	// RecentSignatures returns up to limit signatures, newest first.
	RecentSignatures(ctx context.Context, limit int) ([]domain.Signature, error)

	// RecentEmbeddings returns up to limit embeddings, newest first.
	RecentEmbeddings(ctx context.Context, limit int) ([]domain.Embedding, error)

	// GetSignatures returns the signatures with the given IDs.
	// Missing IDs are skipped; the result is keyed by ID.
	GetSignatures(ctx context.Context, ids []string) (map[string]domain.Signature, error)

	// Close releases resources.
	Close() error
}
