package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
	"github.com/custodia-labs/syllabusmatch/internal/logger"
)

// EmbeddingGenerator turns a syllabus record into a normalised embedding.
// The primary provider is tried first under a timeout; any failure falls
// back to a local deterministic embedder of the same dimension.
type EmbeddingGenerator struct {
	primary  driven.EmbeddingService
	fallback driven.EmbeddingService
	cache    driven.EmbeddingCache
	observer driven.MatchObserver
	timeout  time.Duration
	newID    func() string
	now      func() time.Time
}

// NewEmbeddingGenerator creates a generator. primary may be nil, in which case
// every vector comes from fallback. A non-positive timeout uses the default.
func NewEmbeddingGenerator(
	primary, fallback driven.EmbeddingService, timeout time.Duration,
) (*EmbeddingGenerator, error) {
	if fallback == nil {
		return nil, fmt.Errorf("%w: fallback embedder is required", domain.ErrEmbeddingUnavailable)
	}
	if primary != nil && primary.Dimensions() != fallback.Dimensions() {
		return nil, fmt.Errorf("%w: provider %s has %d dimensions, fallback %s has %d",
			domain.ErrDimensionMismatch,
			primary.ModelName(), primary.Dimensions(),
			fallback.ModelName(), fallback.Dimensions())
	}
	if timeout <= 0 {
		timeout = domain.DefaultProviderTimeout
	}
	return &EmbeddingGenerator{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		newID:    uuid.NewString,
		now:      time.Now,
	}, nil
}

// WithCache enables content-addressed caching of provider vectors.
func (g *EmbeddingGenerator) WithCache(cache driven.EmbeddingCache) *EmbeddingGenerator {
	g.cache = cache
	return g
}

// WithObserver reports fallbacks to observer.
func (g *EmbeddingGenerator) WithObserver(observer driven.MatchObserver) *EmbeddingGenerator {
	g.observer = observer
	return g
}

// Dimensions returns the length of every vector this generator produces.
func (g *EmbeddingGenerator) Dimensions() int {
	return g.fallback.Dimensions()
}

// Embed builds the embedding for record, owned by signatureID.
func (g *EmbeddingGenerator) Embed(
	ctx context.Context, record domain.SyllabusRecord, signatureID string,
) (domain.Embedding, error) {
	text := SourceText(record)
	emb := domain.Embedding{
		ID:          g.newID(),
		SignatureID: signatureID,
		SourceText:  text,
		Metadata: domain.EmbeddingMetadata{
			CourseCode:  domain.StringValue(record.CourseCode),
			CourseTitle: domain.StringValue(record.CourseTitle),
			University:  domain.StringValue(record.University),
			Semester:    record.SemesterString(),
			Year:        domain.StringValue(record.Year),
		},
		CreatedAt: g.now().UTC(),
	}

	// Nothing to embed: a zero vector never scores above zero against anything.
	if text == "" {
		logger.Debug("Embedding: empty source text, using zero vector")
		emb.Vector = make([]float32, g.Dimensions())
		emb.Model = g.fallback.ModelName()
		return emb, nil
	}

	if g.primary != nil {
		vec, err := g.embedPrimary(ctx, text)
		if err == nil {
			emb.Vector = NormalizeL2(vec)
			emb.Model = g.primary.ModelName()
			return emb, nil
		}
		logger.Warn("Embedding provider %s failed, using fallback: %v", g.primary.ModelName(), err)
		if g.observer != nil {
			g.observer.ObserveEmbeddingFallback(err)
		}
	}

	vec, err := g.fallback.Embed(ctx, text)
	if err != nil {
		return domain.Embedding{}, fmt.Errorf("%w: fallback: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vec) != g.Dimensions() {
		return domain.Embedding{}, fmt.Errorf("%w: fallback returned %d values, want %d",
			domain.ErrDimensionMismatch, len(vec), g.Dimensions())
	}
	emb.Vector = NormalizeL2(vec)
	emb.Model = g.fallback.ModelName()
	return emb, nil
}

// embedPrimary asks the primary provider for a vector, consulting the cache first.
func (g *EmbeddingGenerator) embedPrimary(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(g.primary.ModelName(), text)
	if g.cache != nil {
		vec, err := g.cache.Get(ctx, key)
		switch {
		case err == nil && len(vec) == g.Dimensions():
			logger.Debug("Embedding: cache hit %s", key[:12])
			return vec, nil
		case err != nil && !errors.Is(err, domain.ErrCacheMiss):
			logger.Warn("Embedding cache read failed: %v", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	vec, err := g.primary.Embed(callCtx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) != g.Dimensions() {
		return nil, fmt.Errorf("%w: provider returned %d values, want %d",
			domain.ErrDimensionMismatch, len(vec), g.Dimensions())
	}

	if g.cache != nil {
		if err := g.cache.Put(ctx, key, vec); err != nil {
			logger.Warn("Embedding cache write failed: %v", err)
		}
	}
	return vec, nil
}

// SourceText joins the record's present fields with single spaces, in the
// order code, title, instructor, university, department, semester, year.
func SourceText(record domain.SyllabusRecord) string {
	parts := make([]string, 0, 7)
	for _, v := range []string{
		domain.StringValue(record.CourseCode),
		domain.StringValue(record.CourseTitle),
		domain.StringValue(record.Instructor),
		domain.StringValue(record.University),
		domain.StringValue(record.Department),
		record.SemesterString(),
		domain.StringValue(record.Year),
	} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// NormalizeL2 scales v to unit length in place and returns it.
// A zero vector is returned unchanged.
func NormalizeL2(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
