package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testSignature(id string, at time.Time) domain.Signature {
	return domain.Signature{
		ID:            id,
		CourseCode:    "CS101",
		CourseTitle:   "Intro to CS",
		Semester:      "fall",
		Year:          "2024",
		University:    "Springfield University",
		SignatureText: "cs101|fall|2024|springfielduniversity",
		OwnerID:       "alice",
		CreatedAt:     at,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Contains(t, store.Path(), dir)
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	_, err = store.AppendSignature(ctx, testSignature("sig-1", time.Now()))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	sigs, err := reopened.RecentSignatures(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, sigs, 1)

	var versions int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

func TestStore_SignatureRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 9, 1, 10, 30, 0, 123456789, time.UTC)

	sig := testSignature("sig-1", at)
	id, err := store.AppendSignature(ctx, sig)
	require.NoError(t, err)
	assert.Equal(t, "sig-1", id)

	sigs, err := store.RecentSignatures(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, sig, sigs[0])
}

func TestStore_AppendSignature_DuplicateID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.AppendSignature(ctx, testSignature("dup", time.Now()))
	require.NoError(t, err)
	_, err = store.AppendSignature(ctx, testSignature("dup", time.Now()))
	assert.Error(t, err)
}

func TestStore_AppendSignature_GeneratesID(t *testing.T) {
	store := setupTestStore(t)

	id, err := store.AppendSignature(context.Background(), domain.Signature{SignatureText: "x"})

	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestStore_EmbeddingRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 9, 1, 10, 30, 0, 0, time.UTC)

	_, err := store.AppendSignature(ctx, testSignature("sig-1", at))
	require.NoError(t, err)

	emb := domain.Embedding{
		ID:          "emb-1",
		SignatureID: "sig-1",
		Vector:      []float32{0.6, -0.8, 0, 1e-7},
		SourceText:  "CS101 Intro to CS",
		Metadata: domain.EmbeddingMetadata{
			CourseCode: "CS101", University: "Springfield University", Semester: "fall", Year: "2024",
		},
		Model:     "hashing",
		CreatedAt: at,
	}
	id, err := store.AppendEmbedding(ctx, emb)
	require.NoError(t, err)
	assert.Equal(t, "emb-1", id)

	embs, err := store.RecentEmbeddings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, embs, 1)
	assert.Equal(t, emb, embs[0])
}

func TestStore_AppendEmbedding_RequiresSignature(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.AppendEmbedding(context.Background(), domain.Embedding{
		SignatureID: "missing", Vector: []float32{1},
	})

	assert.Error(t, err)
}

func TestStore_Recent_NewestFirstWithLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	order := []int{2, 0, 4, 1, 3}
	for _, i := range order {
		id := fmt.Sprintf("sig-%d", i)
		at := base.Add(time.Duration(i) * time.Hour)
		_, err := store.AppendSignature(ctx, testSignature(id, at))
		require.NoError(t, err)
		_, err = store.AppendEmbedding(ctx, domain.Embedding{
			ID: "emb-" + id, SignatureID: id, Vector: []float32{1}, CreatedAt: at,
		})
		require.NoError(t, err)
	}

	sigs, err := store.RecentSignatures(ctx, 3)
	require.NoError(t, err)
	require.Len(t, sigs, 3)
	assert.Equal(t, []string{"sig-4", "sig-3", "sig-2"}, []string{sigs[0].ID, sigs[1].ID, sigs[2].ID})

	embs, err := store.RecentEmbeddings(ctx, 2)
	require.NoError(t, err)
	require.Len(t, embs, 2)
	assert.Equal(t, "emb-sig-4", embs[0].ID)

	all, err := store.RecentSignatures(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestStore_GetSignatures(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	_, _ = store.AppendSignature(ctx, testSignature("a", time.Now()))
	_, _ = store.AppendSignature(ctx, testSignature("b", time.Now()))

	got, err := store.GetSignatures(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "alice", got["a"].OwnerID)

	empty, err := store.GetSignatures(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id, err := store.AppendSignature(ctx, domain.Signature{SignatureText: fmt.Sprint(n)})
			if !assert.NoError(t, err) {
				return
			}
			_, err = store.AppendEmbedding(ctx, domain.Embedding{SignatureID: id, Vector: []float32{1, 0}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sigs, err := store.RecentSignatures(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, sigs, 10)
}

func TestFloat32BlobRoundTrip(t *testing.T) {
	in := []float32{0, 1, -1, 3.14159, 1e-30}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Empty(t, bytesToFloat32Slice(nil))
}
