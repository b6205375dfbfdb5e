package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driving"
	"github.com/custodia-labs/syllabusmatch/internal/logger"
)

// Ensure MatchingService implements the interface.
var _ driving.MatchingService = (*MatchingService)(nil)

// FuzzyConfirmSimilarity is the similarity reported for a fuzzy-only best match.
// Fuzzy matches are offered for confirmation, never joined on their own.
const FuzzyConfirmSimilarity = 0.7

// fuzzyConfirmReason replaces the fuzzy matcher's reason on a fuzzy-only best match.
const fuzzyConfirmReason = "fuzzy string match"

// MatchingService runs the full upload pipeline: extract, sign, match both
// ways, recommend and persist.
type MatchingService struct {
	store      driven.CorpusStore
	extractor  *FieldExtractor
	signatures *SignatureBuilder
	embedder   *EmbeddingGenerator
	fuzzy      *FuzzyMatcher
	semantic   *SemanticMatcher
	settings   domain.MatchSettings
	observer   driven.MatchObserver
}

// NewMatchingService creates a matching service over store.
func NewMatchingService(
	store driven.CorpusStore,
	embedder *EmbeddingGenerator,
	settings domain.MatchSettings,
) (*MatchingService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: corpus store is required", domain.ErrInvalidInput)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedding generator is required", domain.ErrInvalidInput)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &MatchingService{
		store:      store,
		extractor:  NewFieldExtractor(),
		signatures: NewSignatureBuilder(),
		embedder:   embedder,
		fuzzy:      NewFuzzyMatcher(store, settings.Window),
		semantic:   NewSemanticMatcher(store, settings.Window),
		settings:   settings,
	}, nil
}

// SetObserver sets the observer notified of extractions, decisions and fallbacks.
func (s *MatchingService) SetObserver(observer driven.MatchObserver) {
	s.observer = observer
	s.embedder.WithObserver(observer)
}

// Extract returns the structured record for rawText without touching the corpus.
func (s *MatchingService) Extract(rawText string) domain.SyllabusRecord {
	return s.extractor.Extract(rawText)
}

// Process extracts rawText, decides against the corpus and appends the new
// signature and embedding. Persistence happens whatever the recommendation.
// No result is returned if any store call fails.
func (s *MatchingService) Process(ctx context.Context, rawText, ownerID string) (*domain.ProcessResult, error) {
	logger.Section("Process Syllabus")

	record := s.extractor.Extract(rawText)
	logger.Debug("Extracted record, confidence %.2f", record.Confidence)
	if s.observer != nil {
		s.observer.ObserveExtraction(record.Confidence)
	}

	sig := s.signatures.Build(record, ownerID)
	logger.Debug("Signature: %s", sig.SignatureText)

	decision, emb, err := s.decide(ctx, record, sig)
	if err != nil {
		return nil, err
	}

	id, err := s.store.AppendSignature(ctx, sig)
	if err != nil {
		return nil, corpusError("append signature", err)
	}
	sig.ID = id
	emb.SignatureID = id

	embID, err := s.store.AppendEmbedding(ctx, emb)
	if err != nil {
		return nil, corpusError("append embedding", err)
	}
	emb.ID = embID
	logger.Debug("Persisted signature %s and embedding %s", sig.ID, emb.ID)

	return &domain.ProcessResult{
		Record:    record,
		Signature: sig,
		Embedding: emb,
		Decision:  *decision,
	}, nil
}

// Decide matches an already extracted record against the corpus without
// persisting anything.
func (s *MatchingService) Decide(
	ctx context.Context, record domain.SyllabusRecord, ownerID string,
) (*domain.Decision, error) {
	sig := s.signatures.Build(record, ownerID)
	decision, _, err := s.decide(ctx, record, sig)
	return decision, err
}

// decide runs the fuzzy scan and the embed-then-semantic scan concurrently.
// The first failure cancels the other branch.
func (s *MatchingService) decide(
	ctx context.Context, record domain.SyllabusRecord, sig domain.Signature,
) (*domain.Decision, domain.Embedding, error) {
	var (
		fuzzy    []domain.MatchCandidate
		semantic []domain.MatchCandidate
		emb      domain.Embedding
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fuzzy, err = s.fuzzy.FindMatches(gctx, sig, s.settings.FuzzyThreshold)
		if err != nil {
			return fmt.Errorf("fuzzy match: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		emb, err = s.embedder.Embed(gctx, record, sig.ID)
		if err != nil {
			return fmt.Errorf("embed: %w", err)
		}
		semantic, err = s.semantic.FindMatches(gctx, emb, s.settings.SemanticThreshold)
		if err != nil {
			return fmt.Errorf("semantic match: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, domain.Embedding{}, err
	}

	decision := Recommend(fuzzy, semantic, s.settings)
	logger.Info("Recommendation: %s (fuzzy=%d, semantic=%d)",
		decision.Recommendation, len(fuzzy), len(semantic))
	if s.observer != nil {
		s.observer.ObserveDecision(decision.Recommendation, decision.BestMatch)
	}
	return &decision, emb, nil
}

// Recommend merges matcher results into a decision. Both slices must already
// be filtered and sorted best first. The first rule that applies wins:
//
//  1. An identical signature with a known course code and university joins.
//  2. A semantic match joins at JoinThreshold or above, otherwise confirms.
//  3. A fuzzy match confirms, reported at FuzzyConfirmSimilarity.
//  4. Otherwise a new group is created.
func Recommend(fuzzy, semantic []domain.MatchCandidate, settings domain.MatchSettings) domain.Decision {
	d := domain.Decision{
		FuzzyMatches:    nonNil(fuzzy),
		SemanticMatches: nonNil(semantic),
		Recommendation:  domain.RecommendCreate,
	}

	if len(fuzzy) > 0 && isExactIdentity(fuzzy[0]) {
		best := fuzzy[0]
		d.BestMatch = &best
		d.Recommendation = domain.RecommendJoin
		return d
	}

	if len(semantic) > 0 {
		best := semantic[0]
		d.BestMatch = &best
		if best.Similarity >= settings.JoinThreshold {
			d.Recommendation = domain.RecommendJoin
		} else {
			d.Recommendation = domain.RecommendConfirm
		}
		return d
	}

	if len(fuzzy) > 0 {
		best := fuzzy[0]
		best.Reason = fuzzyConfirmReason
		best.Similarity = FuzzyConfirmSimilarity
		d.BestMatch = &best
		d.Recommendation = domain.RecommendConfirm
	}
	return d
}

// isExactIdentity reports whether c is an identical signature keyed on a real
// course code and university.
func isExactIdentity(c domain.MatchCandidate) bool {
	return c.Method == domain.MatchMethodFuzzy &&
		c.Similarity >= 1.0 &&
		domain.HasKnown(c.Signature.CourseCode) &&
		domain.HasKnown(c.Signature.University)
}

func nonNil(c []domain.MatchCandidate) []domain.MatchCandidate {
	if c == nil {
		return []domain.MatchCandidate{}
	}
	return c
}
