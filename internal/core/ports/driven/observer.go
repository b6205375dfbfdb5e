package driven

import "github.com/custodia-labs/syllabusmatch/internal/core/domain"

// MatchObserver receives events from the matching engine, typically to
// record metrics. Implementations must be safe for concurrent use and must
// not block.
type MatchObserver interface {
	// ObserveExtraction is called once per extracted record.
	ObserveExtraction(confidence float64)

	// ObserveDecision is called once per completed decision.
	ObserveDecision(rec domain.Recommendation, best *domain.MatchCandidate)

	// ObserveEmbeddingFallback is called when the provider failed and the
	// local fallback produced the vector.
	ObserveEmbeddingFallback(reason error)
}
