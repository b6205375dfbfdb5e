package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/google/uuid"

	"github.com/custodia-labs/syllabusmatch/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CorpusStore = (*Store)(nil)

// dbFileName is the corpus database file inside the data directory.
const dbFileName = "corpus.db"

// Store is the SQLite-backed corpus store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.syllabusmatch/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".syllabusmatch", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every .up.sql file newer than the recorded schema version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_corpus.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Signatures ====================

// AppendSignature stores a new signature. An empty ID or CreatedAt is filled in.
func (s *Store) AppendSignature(ctx context.Context, sig domain.Signature) (string, error) {
	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signatures (id, course_code, course_title, semester, year, university,
			signature_text, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sig.ID, sig.CourseCode, sig.CourseTitle, sig.Semester, sig.Year, sig.University,
		sig.SignatureText, sig.OwnerID, sig.CreatedAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("saving signature: %w", err)
	}
	return sig.ID, nil
}

// RecentSignatures returns up to limit signatures, newest first.
func (s *Store) RecentSignatures(ctx context.Context, limit int) ([]domain.Signature, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, course_code, course_title, semester, year, university,
			signature_text, owner_id, created_at
		FROM signatures
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying signatures: %w", err)
	}
	defer rows.Close()

	sigs := make([]domain.Signature, 0)
	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, rows.Err()
}

// GetSignatures returns the signatures with the given IDs, skipping unknown ones.
func (s *Store) GetSignatures(ctx context.Context, ids []string) (map[string]domain.Signature, error) {
	out := make(map[string]domain.Signature, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	//nolint:gosec // G202: placeholders are generated, values are bound.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, course_code, course_title, semester, year, university,
			signature_text, owner_id, created_at
		FROM signatures
		WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying signatures by id: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			return nil, err
		}
		out[sig.ID] = sig
	}
	return out, rows.Err()
}

// ==================== Embeddings ====================

// AppendEmbedding stores a new embedding. The owning signature must exist.
func (s *Store) AppendEmbedding(ctx context.Context, emb domain.Embedding) (string, error) {
	if emb.ID == "" {
		emb.ID = uuid.NewString()
	}
	if emb.CreatedAt.IsZero() {
		emb.CreatedAt = time.Now()
	}

	metadataJSON, err := json.Marshal(emb.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embeddings (id, signature_id, vector, dimensions, source_text, metadata, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, emb.ID, emb.SignatureID, float32SliceToBytes(emb.Vector), len(emb.Vector),
		emb.SourceText, string(metadataJSON), emb.Model, emb.CreatedAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("saving embedding: %w", err)
	}
	return emb.ID, nil
}

// RecentEmbeddings returns up to limit embeddings, newest first.
func (s *Store) RecentEmbeddings(ctx context.Context, limit int) ([]domain.Embedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, signature_id, vector, source_text, metadata, model, created_at
		FROM embeddings
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	embs := make([]domain.Embedding, 0)
	for rows.Next() {
		var emb domain.Embedding
		var blob []byte
		var metadataJSON string
		var createdAt int64
		if err := rows.Scan(&emb.ID, &emb.SignatureID, &blob, &emb.SourceText,
			&metadataJSON, &emb.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		emb.Vector = bytesToFloat32Slice(blob)
		emb.CreatedAt = time.Unix(0, createdAt).UTC()
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &emb.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling embedding metadata: %w", err)
			}
		}
		embs = append(embs, emb)
	}
	return embs, rows.Err()
}

// ==================== Helpers ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSignature(row rowScanner) (domain.Signature, error) {
	var sig domain.Signature
	var createdAt int64
	if err := row.Scan(&sig.ID, &sig.CourseCode, &sig.CourseTitle, &sig.Semester, &sig.Year,
		&sig.University, &sig.SignatureText, &sig.OwnerID, &createdAt); err != nil {
		return domain.Signature{}, fmt.Errorf("scanning signature: %w", err)
	}
	sig.CreatedAt = time.Unix(0, createdAt).UTC()
	return sig, nil
}

// sqlLimit maps a non-positive limit to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
