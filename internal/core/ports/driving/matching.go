package driving

import (
	"context"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

// MatchingService is the caller-facing contract of the matching engine.
type MatchingService interface {
	// Process extracts fields from rawText, decides against the corpus and
	// persists the new signature and embedding.
	Process(ctx context.Context, rawText, ownerID string) (*domain.ProcessResult, error)

	// Extract returns the structured record for rawText without touching the corpus.
	Extract(rawText string) domain.SyllabusRecord
}

// CorpusService exposes read access to stored signatures.
type CorpusService interface {
	// Recent returns up to limit signatures, newest first.
	Recent(ctx context.Context, limit int) ([]domain.Signature, error)
}
