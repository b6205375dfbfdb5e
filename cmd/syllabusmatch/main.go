// Command syllabusmatch matches uploaded syllabi against a corpus of known
// course offerings and recommends joining, creating or confirming a group.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/ai"
	memorycache "github.com/custodia-labs/syllabusmatch/internal/adapters/driven/cache/memory"
	rediscache "github.com/custodia-labs/syllabusmatch/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/config/env"
	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/metrics"
	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/syllabusmatch/internal/adapters/driving/cli"
	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
	"github.com/custodia-labs/syllabusmatch/internal/core/services"
	"github.com/custodia-labs/syllabusmatch/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cli.SetVersion(version)

	fileStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	configStore, err := env.NewOverlay(fileStore)
	if err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		// Settings commands stay usable so the configuration can be repaired.
		logger.Error("invalid settings: %v", err)
		cli.SetServices(cli.Services{Settings: settingsService})
		return cli.Execute()
	}

	store, err := openStore(&settings.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	embedders, err := ai.Init(ctx, &settings.Embedding)
	if err != nil {
		return err
	}
	defer embedders.Close()
	for _, w := range embedders.Warnings {
		logger.Warn("%s", w)
	}

	generator, err := services.NewEmbeddingGenerator(
		embedders.Primary, embedders.Fallback, settings.Embedding.Timeout)
	if err != nil {
		return fmt.Errorf("embedding generator: %w", err)
	}

	cache, closeCache, err := openCache(ctx, &settings.Cache)
	if err != nil {
		// A cache is an optimisation, so run without one.
		logger.Warn("embedding cache disabled: %v", err)
	}
	if cache != nil {
		generator.WithCache(cache)
		defer closeCache()
	}

	matchingService, err := services.NewMatchingService(store, generator, settings.Matching)
	if err != nil {
		return fmt.Errorf("matching service: %w", err)
	}
	observer := metrics.NewObserver()
	matchingService.SetObserver(observer)

	cli.SetServices(cli.Services{
		Matching: matchingService,
		Corpus:   services.NewCorpusService(store),
		Settings: settingsService,
		Metrics:  observer.Handler(),
	})
	return cli.Execute()
}

// openStore opens the corpus store selected by settings.
func openStore(settings *domain.StorageSettings) (driven.CorpusStore, error) {
	switch settings.Backend {
	case domain.StorageMemory:
		return memory.NewCorpusStore(), nil
	case domain.StorageSQLite:
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, err)
		}
		logger.Debug("corpus: %s", store.Path())
		return store, nil
	case domain.StoragePostgres:
		store, err := postgres.NewStore(settings.DSN)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unsupported storage backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}

// openCache opens the embedding cache selected by settings. It returns a nil
// cache for the none backend.
func openCache(ctx context.Context, settings *domain.CacheSettings) (driven.EmbeddingCache, func(), error) {
	switch settings.Backend {
	case domain.CacheMemory:
		return memorycache.NewCache(settings.TTL), func() {}, nil
	case domain.CacheRedis:
		cache, err := rediscache.NewCache(ctx, rediscache.Config{
			Addr: settings.RedisAddr,
			TTL:  settings.TTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return cache, func() { _ = cache.Close() }, nil
	default:
		return nil, nil, nil
	}
}
