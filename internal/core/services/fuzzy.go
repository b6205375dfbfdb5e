package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
	"github.com/custodia-labs/syllabusmatch/internal/logger"
)

// FuzzyMatcher compares signature texts against the recent corpus window.
type FuzzyMatcher struct {
	store  driven.CorpusStore
	window int
}

// NewFuzzyMatcher creates a fuzzy matcher scanning the window most recent signatures.
// Only the window is scanned so cost per upload stays flat as the corpus grows.
func NewFuzzyMatcher(store driven.CorpusStore, window int) *FuzzyMatcher {
	if window <= 0 {
		window = domain.DefaultWindow
	}
	return &FuzzyMatcher{store: store, window: window}
}

// FindMatches returns stored signatures whose token-set similarity to sig is
// at least threshold, best first.
func (m *FuzzyMatcher) FindMatches(
	ctx context.Context, sig domain.Signature, threshold float64,
) ([]domain.MatchCandidate, error) {
	corpus, err := m.store.RecentSignatures(ctx, m.window)
	if err != nil {
		return nil, corpusError("scan signatures", err)
	}
	logger.Debug("Fuzzy: scanned %d signatures (window %d)", len(corpus), m.window)

	matches := RankFuzzy(sig, corpus, threshold)
	logger.Debug("Fuzzy: %d matches >= %.2f", len(matches), threshold)
	return matches, nil
}

// RankFuzzy scores corpus against sig and keeps candidates at or above threshold,
// sorted by similarity descending and then by most recent first.
func RankFuzzy(sig domain.Signature, corpus []domain.Signature, threshold float64) []domain.MatchCandidate {
	matches := make([]domain.MatchCandidate, 0)
	for i := range corpus {
		if corpus[i].ID == sig.ID {
			continue
		}
		sim := JaccardSimilarity(sig.SignatureText, corpus[i].SignatureText)
		if sim < threshold {
			continue
		}
		matches = append(matches, domain.MatchCandidate{
			Signature:  corpus[i],
			Similarity: sim,
			Method:     domain.MatchMethodFuzzy,
			Reason:     fmt.Sprintf("fuzzy string match (%d%% token overlap)", percent(sim)),
		})
	}
	sortCandidates(matches)
	return matches
}

// JaccardSimilarity is |A∩B| / |A∪B| over the pipe-separated tokens of two
// signature texts. It compares field values, not characters.
func JaccardSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	setA := tokenSet(a)
	setB := tokenSet(b)

	var intersection int
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Split(text, domain.SignatureSeparator) {
		set[tok] = true
	}
	return set
}

// sortCandidates orders by similarity descending, newer signatures first on ties.
func sortCandidates(c []domain.MatchCandidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Similarity != c[j].Similarity {
			return c[i].Similarity > c[j].Similarity
		}
		return c[i].Signature.CreatedAt.After(c[j].Signature.CreatedAt)
	})
}
