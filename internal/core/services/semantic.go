package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
	"github.com/custodia-labs/syllabusmatch/internal/logger"
)

// SemanticMatcher compares an embedding against the recent embedding window.
type SemanticMatcher struct {
	store  driven.CorpusStore
	window int
}

// NewSemanticMatcher creates a semantic matcher scanning the window most recent embeddings.
func NewSemanticMatcher(store driven.CorpusStore, window int) *SemanticMatcher {
	if window <= 0 {
		window = domain.DefaultWindow
	}
	return &SemanticMatcher{store: store, window: window}
}

type semanticHit struct {
	stored     domain.Embedding
	similarity float64
}

// FindMatches returns candidates whose cosine similarity to emb is at least
// threshold, best first. Embeddings owned by emb's own signature are skipped.
func (m *SemanticMatcher) FindMatches(
	ctx context.Context, emb domain.Embedding, threshold float64,
) ([]domain.MatchCandidate, error) {
	corpus, err := m.store.RecentEmbeddings(ctx, m.window)
	if err != nil {
		return nil, corpusError("scan embeddings", err)
	}
	logger.Debug("Semantic: scanned %d embeddings (window %d)", len(corpus), m.window)

	hits := make([]semanticHit, 0)
	ids := make([]string, 0)
	for i := range corpus {
		if corpus[i].SignatureID == emb.SignatureID {
			continue
		}
		sim, err := CosineSimilarity(emb.Vector, corpus[i].Vector)
		if err != nil {
			return nil, fmt.Errorf("compare with embedding %s: %w", corpus[i].ID, err)
		}
		if sim < threshold {
			continue
		}
		hits = append(hits, semanticHit{stored: corpus[i], similarity: sim})
		ids = append(ids, corpus[i].SignatureID)
	}
	if len(hits) == 0 {
		return []domain.MatchCandidate{}, nil
	}

	sigs, err := m.store.GetSignatures(ctx, ids)
	if err != nil {
		return nil, corpusError("load matched signatures", err)
	}

	matches := make([]domain.MatchCandidate, 0, len(hits))
	for _, h := range hits {
		sig, ok := sigs[h.stored.SignatureID]
		if !ok {
			logger.Debug("Semantic: signature %s missing for embedding %s", h.stored.SignatureID, h.stored.ID)
			continue
		}
		matches = append(matches, domain.MatchCandidate{
			Signature:  sig,
			Similarity: h.similarity,
			Method:     domain.MatchMethodSemantic,
			Reason:     semanticReason(emb.Metadata, h.stored.Metadata, h.similarity),
		})
	}
	sortCandidates(matches)
	logger.Debug("Semantic: %d matches >= %.2f", len(matches), threshold)
	return matches, nil
}

// CosineSimilarity returns dot(a,b) / (|a| |b|), clamped to [-1,1].
// Vectors of different length fail with domain.ErrDimensionMismatch;
// a zero vector scores 0 against everything.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, sim)), nil
}

// semanticReason explains a semantic match from the denormalised metadata.
func semanticReason(query, stored domain.EmbeddingMetadata, sim float64) string {
	var reasons []string
	if sameField(query.CourseCode, stored.CourseCode) {
		reasons = append(reasons, "same course code")
	}
	if sameField(query.University, stored.University) {
		reasons = append(reasons, "same university")
	}
	if sameField(query.Semester, stored.Semester) {
		reasons = append(reasons, "same semester")
	}
	if sameField(query.Year, stored.Year) {
		reasons = append(reasons, "same year")
	}
	if similarTitle(query.CourseTitle, stored.CourseTitle) {
		reasons = append(reasons, "similar title")
	}
	if len(reasons) == 0 {
		return fmt.Sprintf("semantically similar (%d%% similar)", percent(sim))
	}
	return fmt.Sprintf("%s (%d%% similar)", strings.Join(reasons, ", "), percent(sim))
}

func sameField(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

func similarTitle(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
