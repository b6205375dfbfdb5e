// Package redis provides a Redis-backed embedding cache shared between processes.
package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.EmbeddingCache = (*Cache)(nil)

// KeyPrefix namespaces cache keys.
const KeyPrefix = "syllabusmatch:embedding:"

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache stores vectors as little-endian float32 blobs.
type Cache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewCache connects to Redis and verifies the connection with a ping.
func NewCache(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is required", domain.ErrInvalidInput)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Cache{rdb: rdb, ttl: cfg.TTL}, nil
}

// Get returns the cached vector or domain.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]float32, error) {
	raw, err := c.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("redis get: corrupt vector of %d bytes", len(raw))
	}
	return decode(raw), nil
}

// Put stores vector under key with the configured TTL.
func (c *Cache) Put(ctx context.Context, key string, vector []float32) error {
	if err := c.rdb.Set(ctx, KeyPrefix+key, encode(vector), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decode(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
