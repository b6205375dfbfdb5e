// Package ai builds the embedding providers described by the settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/syllabusmatch/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/syllabusmatch/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the embedders the matching engine runs with.
type InitResult struct {
	// Primary is the remote provider, nil when only the local embedder runs.
	Primary driven.EmbeddingService

	// Fallback is always set and shares Primary's dimensions.
	Fallback driven.EmbeddingService

	Warnings []string // Non-fatal issues that caused fallback.
	FellBack bool     // True if a configured provider was dropped at startup.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.Primary != nil {
		r.Primary.Close()
	}
	if r.Fallback != nil {
		r.Fallback.Close()
	}
}

// Init creates the fallback and, for remote providers, a rate-limited primary.
// A primary that fails its ping is dropped with a warning; configuration
// errors such as an unsupported dimension are returned.
func Init(ctx context.Context, settings *domain.EmbeddingSettings) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings are required", domain.ErrEmbeddingUnavailable)
	}

	primary, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'syllabusmatch settings set' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if primary == nil {
		return &InitResult{Fallback: hashing.NewEmbeddingService(settings.Dimensions)}, nil
	}

	// The fallback follows the provider so both write comparable vectors.
	result := &InitResult{Fallback: hashing.NewEmbeddingService(primary.Dimensions())}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := primary.Ping(pingCtx); err != nil {
		primary.Close()
		result.FellBack = true
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"embedding provider %s unreachable (%v), using local %s embeddings",
			settings.Provider, err, hashing.ModelName))
		return result, nil
	}

	result.Primary = ratelimit.Wrap(primary, ratelimit.Config{
		RequestsPerSecond: settings.RequestsPerSecond,
		Burst:             settings.Burst,
	})
	return result, nil
}

// CreateEmbeddingService creates the remote embedding service for settings.
// Returns nil for the hashing provider, which has no remote side.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider %q is not configured", providerName(settings))
	}

	switch settings.Provider {
	case domain.AIProviderHashing:
		return nil, nil

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service. text-embedding-3
// models are shortened to the configured dimensions so they line up with the fallback.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func providerName(settings *domain.EmbeddingSettings) string {
	if settings == nil {
		return ""
	}
	return settings.Provider.String()
}
