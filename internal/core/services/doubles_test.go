package services

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

func strPtr(s string) *string { return &s }

func semPtr(s domain.Semester) *domain.Semester { return &s }

// stubEmbedder is a bag-of-words embedder: identical text gives identical vectors.
type stubEmbedder struct {
	dims  int
	model string
	err   error
	delay time.Duration
	wrong bool
	calls atomic.Int32
}

func newStubEmbedder(dims int, model string) *stubEmbedder {
	return &stubEmbedder{dims: dims, model: model}
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	n := s.dims
	if s.wrong {
		n++
	}
	vec := make([]float32, n)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%uint32(n)]++
	}
	return vec, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int              { return s.dims }
func (s *stubEmbedder) ModelName() string            { return s.model }
func (s *stubEmbedder) Ping(_ context.Context) error { return s.err }
func (s *stubEmbedder) Close() error                 { return nil }

// faultyStore injects errors in front of a memory corpus store.
type faultyStore struct {
	*memory.CorpusStore
	scanSigErr error
	scanEmbErr error
	lookupErr  error
	appendErr  error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{CorpusStore: memory.NewCorpusStore()}
}

func (s *faultyStore) AppendSignature(ctx context.Context, sig domain.Signature) (string, error) {
	if s.appendErr != nil {
		return "", s.appendErr
	}
	return s.CorpusStore.AppendSignature(ctx, sig)
}

func (s *faultyStore) RecentSignatures(ctx context.Context, limit int) ([]domain.Signature, error) {
	if s.scanSigErr != nil {
		return nil, s.scanSigErr
	}
	return s.CorpusStore.RecentSignatures(ctx, limit)
}

func (s *faultyStore) RecentEmbeddings(ctx context.Context, limit int) ([]domain.Embedding, error) {
	if s.scanEmbErr != nil {
		return nil, s.scanEmbErr
	}
	return s.CorpusStore.RecentEmbeddings(ctx, limit)
}

func (s *faultyStore) GetSignatures(ctx context.Context, ids []string) (map[string]domain.Signature, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.CorpusStore.GetSignatures(ctx, ids)
}

var _ driven.CorpusStore = (*faultyStore)(nil)

// recordingObserver captures observer calls.
type recordingObserver struct {
	mu          sync.Mutex
	confidences []float64
	decisions   []domain.Recommendation
	fallbacks   []error
}

func (o *recordingObserver) ObserveExtraction(confidence float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.confidences = append(o.confidences, confidence)
}

func (o *recordingObserver) ObserveDecision(rec domain.Recommendation, _ *domain.MatchCandidate) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions = append(o.decisions, rec)
}

func (o *recordingObserver) ObserveEmbeddingFallback(reason error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks = append(o.fallbacks, reason)
}

// mapCache is an in-process driven.EmbeddingCache.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]float32
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]float32)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vec, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return append([]float32(nil), vec...), nil
}

func (c *mapCache) Put(_ context.Context, key string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]float32(nil), vector...)
	return nil
}
