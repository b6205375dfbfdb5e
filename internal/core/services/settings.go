package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyEmbedProvider     = "embedding.provider"
	KeyEmbedModel        = "embedding.model"
	KeyEmbedBaseURL      = "embedding.base_url"
	KeyEmbedAPIKey       = "embedding.api_key"
	KeyEmbedDimensions   = "embedding.dimensions"
	KeyEmbedTimeout      = "embedding.timeout"
	KeyEmbedRPS          = "embedding.requests_per_second"
	KeyEmbedBurst        = "embedding.burst"
	KeyMatchWindow       = "matching.window"
	KeyFuzzyThreshold    = "matching.fuzzy_threshold"
	KeySemanticThreshold = "matching.semantic_threshold"
	KeyJoinThreshold     = "matching.join_threshold"
	KeyStorageBackend    = "storage.backend"
	KeyStorageDataDir    = "storage.data_dir"
	KeyStorageDSN        = "storage.dsn"
	KeyCacheBackend      = "cache.backend"
	KeyCacheRedisAddr    = "cache.redis_addr"
	KeyCacheTTL          = "cache.ttl"
)

// SettingKeys lists every key Set accepts.
func SettingKeys() []string {
	return []string{
		KeyEmbedProvider, KeyEmbedModel, KeyEmbedBaseURL, KeyEmbedAPIKey,
		KeyEmbedDimensions, KeyEmbedTimeout, KeyEmbedRPS, KeyEmbedBurst,
		KeyMatchWindow, KeyFuzzyThreshold, KeySemanticThreshold, KeyJoinThreshold,
		KeyStorageBackend, KeyStorageDataDir, KeyStorageDSN,
		KeyCacheBackend, KeyCacheRedisAddr, KeyCacheTTL,
	}
}

// SettingsService resolves application settings from a config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the effective settings. Missing or unparseable values fall back
// to defaults; the result is validated before it is returned.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	provider := s.getProvider(KeyEmbedProvider, defaults.Embedding.Provider)
	model := s.getString(KeyEmbedModel, domain.DefaultEmbeddingModels()[provider])

	dimsDefault := defaults.Embedding.Dimensions
	if d, ok := domain.EmbeddingDimensions()[model]; ok && provider != domain.AIProviderOpenAI {
		dimsDefault = d
	}

	baseURL := s.configStore.GetString(KeyEmbedBaseURL)
	if baseURL == "" && provider == domain.AIProviderOllama {
		baseURL = "http://localhost:11434"
	}

	settings := &domain.Settings{
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           baseURL,
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			Dimensions:        s.getInt(KeyEmbedDimensions, dimsDefault),
			Timeout:           s.getDuration(KeyEmbedTimeout, defaults.Embedding.Timeout),
			RequestsPerSecond: s.getFloat(KeyEmbedRPS, defaults.Embedding.RequestsPerSecond),
			Burst:             s.getInt(KeyEmbedBurst, defaults.Embedding.Burst),
		},
		Matching: domain.MatchSettings{
			Window:            s.getInt(KeyMatchWindow, defaults.Matching.Window),
			FuzzyThreshold:    s.getFloat(KeyFuzzyThreshold, defaults.Matching.FuzzyThreshold),
			SemanticThreshold: s.getFloat(KeySemanticThreshold, defaults.Matching.SemanticThreshold),
			JoinThreshold:     s.getFloat(KeyJoinThreshold, defaults.Matching.JoinThreshold),
		},
		Storage: domain.StorageSettings{
			Backend: s.getStorageBackend(defaults.Storage.Backend),
			DataDir: s.configStore.GetString(KeyStorageDataDir),
			DSN:     s.configStore.GetString(KeyStorageDSN),
		},
		Cache: domain.CacheSettings{
			Backend:   s.getCacheBackend(defaults.Cache.Backend),
			RedisAddr: s.getString(KeyCacheRedisAddr, "localhost:6379"),
			TTL:       s.getDuration(KeyCacheTTL, defaults.Cache.TTL),
		},
	}

	if err := settings.Matching.Validate(); err != nil {
		return nil, fmt.Errorf("matching settings: %w", err)
	}
	if !settings.Embedding.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider %s requires an API key",
			domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.Storage.Backend == domain.StoragePostgres && settings.Storage.DSN == "" {
		return nil, fmt.Errorf("%w: postgres storage requires %s", domain.ErrInvalidInput, KeyStorageDSN)
	}
	return settings, nil
}

// Set validates and stores a single setting.
func (s *SettingsService) Set(key string, value any) error {
	str := strings.TrimSpace(fmt.Sprint(value))

	var stored any = str
	switch key {
	case KeyEmbedProvider:
		if !domain.AIProvider(str).IsValid() {
			return fmt.Errorf("%w: embedding provider %q", domain.ErrInvalidInput, str)
		}
	case KeyStorageBackend:
		if !domain.StorageBackend(str).IsValid() {
			return fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, str)
		}
	case KeyCacheBackend:
		if !domain.CacheBackend(str).IsValid() {
			return fmt.Errorf("%w: cache backend %q", domain.ErrInvalidInput, str)
		}
	case KeyEmbedTimeout, KeyCacheTTL:
		if _, err := time.ParseDuration(str); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
	case KeyEmbedDimensions, KeyEmbedBurst, KeyMatchWindow:
		var n int
		if _, err := fmt.Sscan(str, &n); err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case KeyEmbedRPS, KeyFuzzyThreshold, KeySemanticThreshold, KeyJoinThreshold:
		var f float64
		if _, err := fmt.Sscan(str, &f); err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = f
	case KeyEmbedModel, KeyEmbedBaseURL, KeyEmbedAPIKey,
		KeyStorageDataDir, KeyStorageDSN, KeyCacheRedisAddr:
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStorageBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(KeyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	backend := domain.CacheBackend(s.configStore.GetString(KeyCacheBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
