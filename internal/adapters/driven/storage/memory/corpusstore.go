package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore is an in-memory implementation of driven.CorpusStore.
// Records are kept in append order.
type CorpusStore struct {
	mu         sync.RWMutex
	signatures []domain.Signature
	embeddings []domain.Embedding
	byID       map[string]int
}

// NewCorpusStore creates a new in-memory corpus store.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{
		byID: make(map[string]int),
	}
}

// AppendSignature stores a signature. An empty ID or CreatedAt is filled in.
func (s *CorpusStore) AppendSignature(_ context.Context, sig domain.Signature) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	if _, exists := s.byID[sig.ID]; exists {
		return "", fmt.Errorf("%w: signature %s already exists", domain.ErrInvalidInput, sig.ID)
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now()
	}
	s.byID[sig.ID] = len(s.signatures)
	s.signatures = append(s.signatures, sig)
	return sig.ID, nil
}

// AppendEmbedding stores an embedding. The owning signature must exist.
func (s *CorpusStore) AppendEmbedding(_ context.Context, emb domain.Embedding) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[emb.SignatureID]; !exists {
		return "", fmt.Errorf("signature %s: %w", emb.SignatureID, domain.ErrNotFound)
	}
	if emb.ID == "" {
		emb.ID = uuid.NewString()
	}
	if emb.CreatedAt.IsZero() {
		emb.CreatedAt = time.Now()
	}
	emb.Vector = append([]float32(nil), emb.Vector...)
	s.embeddings = append(s.embeddings, emb)
	return emb.ID, nil
}

// RecentSignatures returns up to limit signatures, newest first.
func (s *CorpusStore) RecentSignatures(_ context.Context, limit int) ([]domain.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Signature, 0, len(s.signatures))
	for i := len(s.signatures) - 1; i >= 0; i-- {
		out = append(out, s.signatures[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RecentEmbeddings returns up to limit embeddings, newest first.
func (s *CorpusStore) RecentEmbeddings(_ context.Context, limit int) ([]domain.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Embedding, 0, len(s.embeddings))
	for i := len(s.embeddings) - 1; i >= 0; i-- {
		emb := s.embeddings[i]
		emb.Vector = append([]float32(nil), emb.Vector...)
		out = append(out, emb)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetSignatures returns the signatures with the given IDs, skipping unknown ones.
func (s *CorpusStore) GetSignatures(_ context.Context, ids []string) (map[string]domain.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Signature, len(ids))
	for _, id := range ids {
		if idx, ok := s.byID[id]; ok {
			out[id] = s.signatures[idx]
		}
	}
	return out, nil
}

// Close is a no-op for the memory store.
func (s *CorpusStore) Close() error {
	return nil
}
