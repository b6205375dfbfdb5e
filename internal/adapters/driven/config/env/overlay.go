// Package env overlays environment variables on top of another ConfigStore.
//
// Variables use the SYLLABUSMATCH_ prefix and the upper-cased config key with
// dots replaced by underscores, e.g. SYLLABUSMATCH_MATCHING_WINDOW. A .env file
// in the working directory is loaded first if present. Environment values win
// over the wrapped store on read; writes always go to the wrapped store.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// Prefix is the environment variable prefix.
const Prefix = "SYLLABUSMATCH"

// Variables recognised by the overlay. Nil means unset.
type Variables struct {
	EmbeddingProvider          *string        `envconfig:"EMBEDDING_PROVIDER"`
	EmbeddingModel             *string        `envconfig:"EMBEDDING_MODEL"`
	EmbeddingBaseURL           *string        `envconfig:"EMBEDDING_BASE_URL"`
	EmbeddingAPIKey            *string        `envconfig:"EMBEDDING_API_KEY"`
	EmbeddingDimensions        *int           `envconfig:"EMBEDDING_DIMENSIONS"`
	EmbeddingTimeout           *time.Duration `envconfig:"EMBEDDING_TIMEOUT"`
	EmbeddingRequestsPerSecond *float64       `envconfig:"EMBEDDING_REQUESTS_PER_SECOND"`
	EmbeddingBurst             *int           `envconfig:"EMBEDDING_BURST"`
	MatchingWindow             *int           `envconfig:"MATCHING_WINDOW"`
	MatchingFuzzyThreshold     *float64       `envconfig:"MATCHING_FUZZY_THRESHOLD"`
	MatchingSemanticThreshold  *float64       `envconfig:"MATCHING_SEMANTIC_THRESHOLD"`
	MatchingJoinThreshold      *float64       `envconfig:"MATCHING_JOIN_THRESHOLD"`
	StorageBackend             *string        `envconfig:"STORAGE_BACKEND"`
	StorageDataDir             *string        `envconfig:"STORAGE_DATA_DIR"`
	StorageDSN                 *string        `envconfig:"STORAGE_DSN"`
	CacheBackend               *string        `envconfig:"CACHE_BACKEND"`
	CacheRedisAddr             *string        `envconfig:"CACHE_REDIS_ADDR"`
	CacheTTL                   *time.Duration `envconfig:"CACHE_TTL"`
}

// values maps the set variables to their dotted config keys.
// Durations are rendered as strings, matching how the file store holds them.
func (v Variables) values() map[string]any {
	out := make(map[string]any)
	str := func(key string, p *string) {
		if p != nil {
			out[key] = *p
		}
	}
	num := func(key string, p *int) {
		if p != nil {
			out[key] = *p
		}
	}
	flt := func(key string, p *float64) {
		if p != nil {
			out[key] = *p
		}
	}
	dur := func(key string, p *time.Duration) {
		if p != nil {
			out[key] = p.String()
		}
	}

	str("embedding.provider", v.EmbeddingProvider)
	str("embedding.model", v.EmbeddingModel)
	str("embedding.base_url", v.EmbeddingBaseURL)
	str("embedding.api_key", v.EmbeddingAPIKey)
	num("embedding.dimensions", v.EmbeddingDimensions)
	dur("embedding.timeout", v.EmbeddingTimeout)
	flt("embedding.requests_per_second", v.EmbeddingRequestsPerSecond)
	num("embedding.burst", v.EmbeddingBurst)
	num("matching.window", v.MatchingWindow)
	flt("matching.fuzzy_threshold", v.MatchingFuzzyThreshold)
	flt("matching.semantic_threshold", v.MatchingSemanticThreshold)
	flt("matching.join_threshold", v.MatchingJoinThreshold)
	str("storage.backend", v.StorageBackend)
	str("storage.data_dir", v.StorageDataDir)
	str("storage.dsn", v.StorageDSN)
	str("cache.backend", v.CacheBackend)
	str("cache.redis_addr", v.CacheRedisAddr)
	dur("cache.ttl", v.CacheTTL)
	return out
}

// Overlay is a ConfigStore that reads environment overrides before
// delegating to a base store.
type Overlay struct {
	base      driven.ConfigStore
	overrides map[string]any
	dotenv    []string
}

// NewOverlay wraps base. dotenvFiles are loaded in order before the
// environment is read; missing files are ignored. With no files, ".env" is tried.
func NewOverlay(base driven.ConfigStore, dotenvFiles ...string) (*Overlay, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	o := &Overlay{base: base, dotenv: dotenvFiles}
	if err := o.Load(); err != nil {
		return nil, err
	}
	return o, nil
}

// Load re-reads the wrapped store, the .env files and the environment.
func (o *Overlay) Load() error {
	if err := o.base.Load(); err != nil {
		return err
	}

	for _, f := range o.dotenv {
		// godotenv.Load never overrides variables already set.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var vars Variables
	if err := envconfig.Process(Prefix, &vars); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	o.overrides = vars.values()
	return nil
}

// Overridden reports whether key is currently set from the environment.
func (o *Overlay) Overridden(key string) bool {
	_, ok := o.overrides[key]
	return ok
}

// Get returns the environment value for key if set, else the base value.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.overrides[key]; ok {
		return v, true
	}
	return o.base.Get(key)
}

// GetString retrieves a string configuration value.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.overrides[key].(string); ok {
		return v
	}
	return o.base.GetString(key)
}

// GetInt retrieves an integer configuration value.
func (o *Overlay) GetInt(key string) int {
	if v, ok := o.overrides[key].(int); ok {
		return v
	}
	return o.base.GetInt(key)
}

// GetFloat retrieves a float configuration value. Integers are widened.
func (o *Overlay) GetFloat(key string) float64 {
	switch v := o.overrides[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return o.base.GetFloat(key)
}

// GetBool retrieves a boolean configuration value.
func (o *Overlay) GetBool(key string) bool {
	if v, ok := o.overrides[key].(bool); ok {
		return v
	}
	return o.base.GetBool(key)
}

// Set writes to the base store. An environment override still wins on read.
func (o *Overlay) Set(key string, value any) error {
	return o.base.Set(key, value)
}

// Path returns the base store's path.
func (o *Overlay) Path() string {
	return o.base.Path()
}
