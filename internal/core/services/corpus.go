package services

import (
	"context"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driving"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService provides read access to stored signatures.
type CorpusService struct {
	store driven.CorpusStore
}

// NewCorpusService creates a new corpus service.
func NewCorpusService(store driven.CorpusStore) *CorpusService {
	return &CorpusService{store: store}
}

// Recent returns up to limit signatures, newest first.
// A non-positive limit uses the default match window.
func (s *CorpusService) Recent(ctx context.Context, limit int) ([]domain.Signature, error) {
	if limit <= 0 {
		limit = domain.DefaultWindow
	}
	sigs, err := s.store.RecentSignatures(ctx, limit)
	if err != nil {
		return nil, corpusError("list signatures", err)
	}
	return sigs, nil
}
