package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

const cs101Upload = `CS 101: Intro to CS
Springfield University
Fall 2024
Instructor: Dr. Alice Adams
`

const cs101Resubmit = `CS 101: Introduction to Computer Science
Springfield University
Fall 2024
Instructor: Prof. Bob Brown
`

func newTestMatchingService(t *testing.T, store driven.CorpusStore, primary driven.EmbeddingService) *MatchingService {
	t.Helper()
	g, err := NewEmbeddingGenerator(primary, newStubEmbedder(256, "hashing"), 50*time.Millisecond)
	require.NoError(t, err)
	svc, err := NewMatchingService(store, g, domain.DefaultMatchSettings())
	require.NoError(t, err)
	return svc
}

func candidate(id string, sim float64, method domain.MatchMethod) domain.MatchCandidate {
	return domain.MatchCandidate{
		Signature:  domain.Signature{ID: id, CourseCode: domain.UnknownField, University: domain.UnknownField},
		Similarity: sim,
		Method:     method,
		Reason:     "original reason",
	}
}

func TestRecommend(t *testing.T) {
	settings := domain.DefaultMatchSettings()

	tests := []struct {
		name       string
		fuzzy      []domain.MatchCandidate
		semantic   []domain.MatchCandidate
		want       domain.Recommendation
		wantBestID string
		wantSim    float64
	}{
		{
			name:       "strong semantic joins",
			semantic:   []domain.MatchCandidate{candidate("s1", 0.85, domain.MatchMethodSemantic)},
			want:       domain.RecommendJoin,
			wantBestID: "s1",
			wantSim:    0.85,
		},
		{
			name:       "semantic at join threshold joins",
			semantic:   []domain.MatchCandidate{candidate("s1", 0.8, domain.MatchMethodSemantic)},
			want:       domain.RecommendJoin,
			wantBestID: "s1",
			wantSim:    0.8,
		},
		{
			name:       "moderate semantic confirms",
			semantic:   []domain.MatchCandidate{candidate("s1", 0.65, domain.MatchMethodSemantic)},
			want:       domain.RecommendConfirm,
			wantBestID: "s1",
			wantSim:    0.65,
		},
		{
			name:       "fuzzy only confirms and never joins",
			fuzzy:      []domain.MatchCandidate{candidate("f1", 0.9, domain.MatchMethodFuzzy)},
			want:       domain.RecommendConfirm,
			wantBestID: "f1",
			wantSim:    FuzzyConfirmSimilarity,
		},
		{
			name:       "semantic outranks fuzzy",
			fuzzy:      []domain.MatchCandidate{candidate("f1", 0.9, domain.MatchMethodFuzzy)},
			semantic:   []domain.MatchCandidate{candidate("s1", 0.7, domain.MatchMethodSemantic)},
			want:       domain.RecommendConfirm,
			wantBestID: "s1",
			wantSim:    0.7,
		},
		{
			name: "nothing creates",
			want: domain.RecommendCreate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Recommend(tt.fuzzy, tt.semantic, settings)

			assert.Equal(t, tt.want, d.Recommendation)
			assert.NotNil(t, d.FuzzyMatches)
			assert.NotNil(t, d.SemanticMatches)
			if tt.wantBestID == "" {
				assert.Nil(t, d.BestMatch)
				return
			}
			require.NotNil(t, d.BestMatch)
			assert.Equal(t, tt.wantBestID, d.BestMatch.Signature.ID)
			assert.InDelta(t, tt.wantSim, d.BestMatch.Similarity, 1e-9)
		})
	}
}

func TestRecommend_FuzzyBestMatchIsRewrapped(t *testing.T) {
	fuzzy := []domain.MatchCandidate{candidate("f1", 0.9, domain.MatchMethodFuzzy)}

	d := Recommend(fuzzy, nil, domain.DefaultMatchSettings())

	require.NotNil(t, d.BestMatch)
	assert.Equal(t, "fuzzy string match", d.BestMatch.Reason)
	assert.Equal(t, "original reason", fuzzy[0].Reason)
	assert.InDelta(t, 0.9, d.FuzzyMatches[0].Similarity, 1e-9)
}

func TestRecommend_IdenticalSignatureJoins(t *testing.T) {
	exact := domain.MatchCandidate{
		Signature:  domain.Signature{ID: "f1", CourseCode: "CS101", University: "Springfield University"},
		Similarity: 1.0,
		Method:     domain.MatchMethodFuzzy,
	}
	weak := []domain.MatchCandidate{candidate("s1", 0.62, domain.MatchMethodSemantic)}

	d := Recommend([]domain.MatchCandidate{exact}, weak, domain.DefaultMatchSettings())

	assert.Equal(t, domain.RecommendJoin, d.Recommendation)
	require.NotNil(t, d.BestMatch)
	assert.Equal(t, "f1", d.BestMatch.Signature.ID)
}

func TestRecommend_IdenticalSignatureWithUnknownFieldsConfirms(t *testing.T) {
	exact := candidate("f1", 1.0, domain.MatchMethodFuzzy)

	d := Recommend([]domain.MatchCandidate{exact}, nil, domain.DefaultMatchSettings())

	assert.Equal(t, domain.RecommendConfirm, d.Recommendation)
}

func TestNewMatchingService_Validation(t *testing.T) {
	g, err := NewEmbeddingGenerator(nil, newStubEmbedder(8, "hashing"), 0)
	require.NoError(t, err)

	_, err = NewMatchingService(nil, g, domain.DefaultMatchSettings())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewMatchingService(newFaultyStore(), nil, domain.DefaultMatchSettings())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := domain.DefaultMatchSettings()
	bad.Window = 0
	_, err = NewMatchingService(newFaultyStore(), g, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMatchingService_Process_EmptyCorpusCreates(t *testing.T) {
	store := newFaultyStore()
	svc := newTestMatchingService(t, store, nil)

	result, err := svc.Process(context.Background(), cs101Upload, "alice")

	require.NoError(t, err)
	assert.Equal(t, domain.RecommendCreate, result.Decision.Recommendation)
	assert.Nil(t, result.Decision.BestMatch)
	assert.Equal(t, "cs101|fall|2024|springfielduniversity", result.Signature.SignatureText)
	assert.Equal(t, "alice", result.Signature.OwnerID)
	assert.Equal(t, result.Signature.ID, result.Embedding.SignatureID)
}

func TestMatchingService_Process_PersistsSignatureAndEmbedding(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	svc := newTestMatchingService(t, store, nil)

	result, err := svc.Process(ctx, cs101Upload, "alice")
	require.NoError(t, err)

	sigs, err := store.RecentSignatures(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, result.Signature.ID, sigs[0].ID)
	assert.Equal(t, result.Signature.SignatureText, sigs[0].SignatureText)

	embs, err := store.RecentEmbeddings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, embs, 1)
	assert.Equal(t, result.Signature.ID, embs[0].SignatureID)
	assert.Equal(t, result.Embedding.Vector, embs[0].Vector)
}

func TestMatchingService_Process_SameOfferingJoins(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	svc := newTestMatchingService(t, store, nil)

	first, err := svc.Process(ctx, cs101Upload, "alice")
	require.NoError(t, err)

	second, err := svc.Process(ctx, cs101Resubmit, "bob")
	require.NoError(t, err)

	assert.Equal(t, first.Signature.SignatureText, second.Signature.SignatureText)
	require.NotEmpty(t, second.Decision.FuzzyMatches)
	assert.InDelta(t, 1.0, second.Decision.FuzzyMatches[0].Similarity, 1e-9)
	assert.Equal(t, domain.RecommendJoin, second.Decision.Recommendation)
	require.NotNil(t, second.Decision.BestMatch)
	assert.Equal(t, first.Signature.ID, second.Decision.BestMatch.Signature.ID)
}

func TestMatchingService_Process_DifferentOfferingCreates(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	svc := newTestMatchingService(t, store, nil)

	_, err := svc.Process(ctx, cs101Upload, "alice")
	require.NoError(t, err)

	other := "BIO 250: Marine Ecology\nCoastal College\nSpring 2023\nTaught by Carol Diaz"
	result, err := svc.Process(ctx, other, "carol")
	require.NoError(t, err)

	assert.Empty(t, result.Decision.FuzzyMatches)
	assert.Empty(t, result.Decision.SemanticMatches)
	assert.Equal(t, domain.RecommendCreate, result.Decision.Recommendation)
}

func TestMatchingService_Process_StoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		inject func(*faultyStore)
	}{
		{"signature scan", func(s *faultyStore) { s.scanSigErr = errors.New("db locked") }},
		{"embedding scan", func(s *faultyStore) { s.scanEmbErr = errors.New("db locked") }},
		{"append", func(s *faultyStore) { s.appendErr = errors.New("db locked") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFaultyStore()
			tt.inject(store)
			svc := newTestMatchingService(t, store, nil)

			result, err := svc.Process(context.Background(), cs101Upload, "alice")

			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrCorpusUnavailable)
		})
	}
}

func TestMatchingService_Process_ScanFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	store.scanEmbErr = errors.New("db locked")
	svc := newTestMatchingService(t, store, nil)

	_, err := svc.Process(ctx, cs101Upload, "alice")
	require.Error(t, err)

	sigs, _ := store.CorpusStore.RecentSignatures(ctx, 10)
	assert.Empty(t, sigs)
}

func TestMatchingService_Process_ProviderFailureFallsBack(t *testing.T) {
	store := newFaultyStore()
	primary := &stubEmbedder{dims: 256, model: "primary", err: errors.New("connection refused")}
	svc := newTestMatchingService(t, store, primary)
	observer := &recordingObserver{}
	svc.SetObserver(observer)

	result, err := svc.Process(context.Background(), cs101Upload, "alice")

	require.NoError(t, err)
	assert.Equal(t, "hashing", result.Embedding.Model)
	assert.Len(t, observer.fallbacks, 1)
	assert.Equal(t, []domain.Recommendation{domain.RecommendCreate}, observer.decisions)
	require.Len(t, observer.confidences, 1)
	assert.InDelta(t, result.Record.Confidence, observer.confidences[0], 1e-9)
}

func TestMatchingService_Decide_DoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	svc := newTestMatchingService(t, store, nil)
	_, err := svc.Process(ctx, cs101Upload, "alice")
	require.NoError(t, err)

	decision, err := svc.Decide(ctx, svc.Extract(cs101Resubmit), "bob")

	require.NoError(t, err)
	assert.Equal(t, domain.RecommendJoin, decision.Recommendation)
	sigs, _ := store.RecentSignatures(ctx, 10)
	assert.Len(t, sigs, 1)
}

func TestMatchingService_Extract(t *testing.T) {
	svc := newTestMatchingService(t, newFaultyStore(), nil)

	record := svc.Extract(cs101Upload)

	require.NotNil(t, record.CourseCode)
	assert.Equal(t, "CS101", *record.CourseCode)
}
