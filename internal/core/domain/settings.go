package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderHashing is the deterministic in-process embedder.
	// It only rewards token overlap and is meant for offline and dev use.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderHashing:
		return "Hashing (offline fallback)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector length shared by the provider and the fallback.
	Dimensions int

	// Timeout bounds a single provider call before falling back.
	Timeout time.Duration

	// RequestsPerSecond throttles outbound provider calls. Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the throttle bucket size.
	Burst int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// MatchSettings tunes the matchers and the decision policy.
type MatchSettings struct {
	// Window is how many of the most recent signatures and embeddings are scanned.
	// It bounds cost per upload; offerings older than the window are not found.
	Window int

	// FuzzyThreshold is the minimum Jaccard similarity for a fuzzy candidate.
	FuzzyThreshold float64

	// SemanticThreshold is the minimum cosine similarity for a semantic candidate.
	SemanticThreshold float64

	// JoinThreshold is the semantic similarity at or above which a join is recommended.
	JoinThreshold float64
}

// Validate checks that thresholds are in range and consistent.
func (m MatchSettings) Validate() error {
	if m.Window < 1 {
		return fmt.Errorf("%w: window must be at least 1, got %d", ErrInvalidInput, m.Window)
	}
	for name, v := range map[string]float64{
		"fuzzy threshold":    m.FuzzyThreshold,
		"semantic threshold": m.SemanticThreshold,
		"join threshold":     m.JoinThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidInput, name, v)
		}
	}
	if m.JoinThreshold < m.SemanticThreshold {
		return fmt.Errorf("%w: join threshold %v is below semantic threshold %v",
			ErrInvalidInput, m.JoinThreshold, m.SemanticThreshold)
	}
	return nil
}

// StorageBackend selects the corpus store implementation.
type StorageBackend string

// Available storage backends.
const (
	StorageMemory   StorageBackend = "memory"
	StorageSQLite   StorageBackend = "sqlite"
	StoragePostgres StorageBackend = "postgres"
)

// IsValid returns true if the storage backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite, StoragePostgres:
		return true
	default:
		return false
	}
}

// StorageSettings holds corpus store configuration.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir is where the SQLite database lives. Empty means ~/.syllabusmatch/data.
	DataDir string

	// DSN is the PostgreSQL connection string.
	DSN string
}

// CacheBackend selects the embedding cache implementation.
type CacheBackend string

// Available cache backends.
const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

// IsValid returns true if the cache backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheNone, CacheMemory, CacheRedis:
		return true
	default:
		return false
	}
}

// CacheSettings holds embedding cache configuration.
type CacheSettings struct {
	Backend   CacheBackend
	RedisAddr string
	TTL       time.Duration
}

// Settings holds all application settings.
type Settings struct {
	Embedding EmbeddingSettings
	Matching  MatchSettings
	Storage   StorageSettings
	Cache     CacheSettings
}

// Default tuning values.
const (
	DefaultWindow            = 100
	DefaultFuzzyThreshold    = 0.8
	DefaultSemanticThreshold = 0.6
	DefaultJoinThreshold     = 0.8
	DefaultDimensions        = 384
	DefaultProviderTimeout   = 5 * time.Second
)

// DefaultSettings returns settings that work with no external services:
// the hashing embedder and a local SQLite corpus.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHashing,
			Dimensions: DefaultDimensions,
			Timeout:    DefaultProviderTimeout,
		},
		Matching: DefaultMatchSettings(),
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Cache: CacheSettings{
			Backend: CacheNone,
			TTL:     24 * time.Hour,
		},
	}
}

// DefaultMatchSettings returns the standard window and thresholds.
func DefaultMatchSettings() MatchSettings {
	return MatchSettings{
		Window:            DefaultWindow,
		FuzzyThreshold:    DefaultFuzzyThreshold,
		SemanticThreshold: DefaultSemanticThreshold,
		JoinThreshold:     DefaultJoinThreshold,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:  "all-minilm",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderHashing: "hashing",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
