// Package postgres provides a PostgreSQL corpus store built on gorm.
//
// It is intended for deployments where several processes share one corpus.
// Tables are created with AutoMigrate on open.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.CorpusStore = (*Store)(nil)

// Store is a gorm-backed corpus store.
type Store struct {
	db *gorm.DB
}

// NewStore connects to PostgreSQL and migrates the corpus tables.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidInput)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := db.AutoMigrate(&signatureRow{}, &embeddingRow{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("migrating corpus tables: %w", err)
	}

	return &Store{db: db}, nil
}

// AppendSignature stores a new signature.
func (s *Store) AppendSignature(ctx context.Context, sig domain.Signature) (string, error) {
	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now()
	}
	row := signatureToRow(sig)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("saving signature: %w", err)
	}
	return row.ID, nil
}

// AppendEmbedding stores a new embedding. The foreign key rejects orphans.
func (s *Store) AppendEmbedding(ctx context.Context, emb domain.Embedding) (string, error) {
	if emb.ID == "" {
		emb.ID = uuid.NewString()
	}
	if emb.CreatedAt.IsZero() {
		emb.CreatedAt = time.Now()
	}
	row := embeddingToRow(emb)
	if err := s.db.WithContext(ctx).Omit("Signature").Create(&row).Error; err != nil {
		return "", fmt.Errorf("saving embedding: %w", err)
	}
	return row.ID, nil
}

// RecentSignatures returns up to limit signatures, newest first.
func (s *Store) RecentSignatures(ctx context.Context, limit int) ([]domain.Signature, error) {
	var rows []signatureRow
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying signatures: %w", err)
	}

	sigs := make([]domain.Signature, len(rows))
	for i, r := range rows {
		sigs[i] = r.toDomain()
	}
	return sigs, nil
}

// RecentEmbeddings returns up to limit embeddings, newest first.
func (s *Store) RecentEmbeddings(ctx context.Context, limit int) ([]domain.Embedding, error) {
	var rows []embeddingRow
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}

	embs := make([]domain.Embedding, len(rows))
	for i, r := range rows {
		embs[i] = r.toDomain()
	}
	return embs, nil
}

// GetSignatures returns the signatures with the given IDs.
func (s *Store) GetSignatures(ctx context.Context, ids []string) (map[string]domain.Signature, error) {
	out := make(map[string]domain.Signature, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []signatureRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying signatures by id: %w", err)
	}
	for _, r := range rows {
		out[r.ID] = r.toDomain()
	}
	return out, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
