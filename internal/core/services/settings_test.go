package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, domain.AIProviderHashing, settings.Embedding.Provider)
	assert.Equal(t, "hashing", settings.Embedding.Model)
	assert.Equal(t, domain.DefaultDimensions, settings.Embedding.Dimensions)
	assert.Equal(t, domain.DefaultProviderTimeout, settings.Embedding.Timeout)
	assert.Equal(t, defaults.Matching, settings.Matching)
	assert.Equal(t, domain.StorageSQLite, settings.Storage.Backend)
	assert.Equal(t, domain.CacheNone, settings.Cache.Backend)
	assert.Equal(t, "localhost:6379", settings.Cache.RedisAddr)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyEmbedProvider, "ollama")
	_ = store.Set(KeyEmbedTimeout, "2s")
	_ = store.Set(KeyEmbedRPS, 4.5)
	_ = store.Set(KeyEmbedBurst, 2)
	_ = store.Set(KeyMatchWindow, 250)
	_ = store.Set(KeySemanticThreshold, 0.55)
	_ = store.Set(KeyJoinThreshold, 0.9)
	_ = store.Set(KeyStorageBackend, "postgres")
	_ = store.Set(KeyStorageDSN, "postgres://localhost/syllabus")
	_ = store.Set(KeyCacheBackend, "redis")
	_ = store.Set(KeyCacheTTL, "1h")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "all-minilm", settings.Embedding.Model)
	assert.Equal(t, 384, settings.Embedding.Dimensions)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	assert.Equal(t, 2*time.Second, settings.Embedding.Timeout)
	assert.InDelta(t, 4.5, settings.Embedding.RequestsPerSecond, 1e-9)
	assert.Equal(t, 2, settings.Embedding.Burst)
	assert.Equal(t, 250, settings.Matching.Window)
	assert.InDelta(t, 0.55, settings.Matching.SemanticThreshold, 1e-9)
	assert.InDelta(t, 0.9, settings.Matching.JoinThreshold, 1e-9)
	assert.Equal(t, domain.StoragePostgres, settings.Storage.Backend)
	assert.Equal(t, domain.CacheRedis, settings.Cache.Backend)
	assert.Equal(t, time.Hour, settings.Cache.TTL)
}

func TestSettingsService_Get_ModelDimensions(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyEmbedProvider, "ollama")
	_ = store.Set(KeyEmbedModel, "nomic-embed-text")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, 768, settings.Embedding.Dimensions)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyEmbedProvider, "invalid_provider")
	_ = store.Set(KeyStorageBackend, "cassandra")
	_ = store.Set(KeyEmbedTimeout, "soon")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderHashing, settings.Embedding.Provider)
	assert.Equal(t, domain.StorageSQLite, settings.Storage.Backend)
	assert.Equal(t, domain.DefaultProviderTimeout, settings.Embedding.Timeout)
}

func TestSettingsService_Get_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{"openai without key", map[string]any{KeyEmbedProvider: "openai"}},
		{"postgres without dsn", map[string]any{KeyStorageBackend: "postgres"}},
		{"join below semantic", map[string]any{KeySemanticThreshold: 0.7, KeyJoinThreshold: 0.6}},
		{"threshold above one", map[string]any{KeyFuzzyThreshold: 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range tt.set {
				_ = store.Set(k, v)
			}

			_, err := NewSettingsService(store).Get()
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set(KeyEmbedProvider, "ollama"))
	require.NoError(t, service.Set(KeyMatchWindow, "150"))
	require.NoError(t, service.Set(KeyJoinThreshold, 0.85))
	require.NoError(t, service.Set(KeyEmbedTimeout, "3s"))
	require.NoError(t, service.Set(KeyStorageDataDir, "/tmp/corpus"))

	assert.Equal(t, "ollama", store.GetString(KeyEmbedProvider))
	assert.Equal(t, 150, store.GetInt(KeyMatchWindow))
	assert.InDelta(t, 0.85, store.GetFloat(KeyJoinThreshold), 1e-9)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 150, settings.Matching.Window)
	assert.Equal(t, 3*time.Second, settings.Embedding.Timeout)
	assert.Equal(t, "/tmp/corpus", settings.Storage.DataDir)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{KeyEmbedProvider, "anthropic"},
		{KeyStorageBackend, "mysql"},
		{KeyCacheBackend, "memcached"},
		{KeyEmbedTimeout, "forever"},
		{KeyMatchWindow, "many"},
		{KeyMatchWindow, -1},
		{KeyFuzzyThreshold, "high"},
		{"search.mode", "hybrid"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store := memory.NewConfigStore()
			err := NewSettingsService(store).Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			_, exists := store.Get(tt.key)
			assert.False(t, exists)
		})
	}
}

func TestSettingKeys_AllAccepted(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	values := map[string]any{
		KeyEmbedProvider: "hashing", KeyStorageBackend: "memory", KeyCacheBackend: "none",
		KeyEmbedTimeout: "1s", KeyCacheTTL: "1m",
	}

	for _, key := range SettingKeys() {
		v, ok := values[key]
		if !ok {
			v = "1"
		}
		assert.NoError(t, service.Set(key, v), key)
	}
}
