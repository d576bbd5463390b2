package badger

import (
	"context"
	"testing"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/llmbatch/core"
	"github.com/poiesic/llmbatch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (storage.ResultCache, *Backend) {
	t.Helper()
	cache, backend, err := NewMemoryCache()
	require.NoError(t, err)
	t.Cleanup(func() {
		cache.Close()
		if !backend.IsClosed() {
			backend.Close()
		}
	})
	return cache, backend
}

func TestResultCache_CompletionRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	key := core.IDFromContent("what is the capital of france")

	_, err := cache.GetCompletion(ctx, key)
	require.ErrorIs(t, err, storage.ErrNotFound)

	entry := &core.CachedCompletion{Content: "Paris", Model: "gpt-4o-mini"}
	require.NoError(t, cache.PutCompletion(ctx, key, entry, 0))
	assert.False(t, entry.StoredAt.IsZero(), "StoredAt should be set on write")

	got, err := cache.GetCompletion(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Paris", got.Content)
	assert.Equal(t, "gpt-4o-mini", got.Model)
}

func TestResultCache_EmbeddingsRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	keys := []core.ID{core.EmbeddingKey("m", "a"), core.EmbeddingKey("m", "b")}
	entries := []*core.CachedEmbedding{
		{Vector: []float32{1, 0}, Model: "m"},
		{Vector: []float32{0, 1}, Model: "m"},
	}
	require.NoError(t, cache.PutEmbeddings(ctx, keys, entries, 0))

	for i, key := range keys {
		got, err := cache.GetEmbedding(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, entries[i].Vector, got.Vector)
	}

	_, err := cache.GetEmbedding(ctx, core.EmbeddingKey("m", "c"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResultCache_KeyspacesAreSeparate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	key := core.ID(42)

	require.NoError(t, cache.PutCompletion(ctx, key, &core.CachedCompletion{Content: "x"}, 0))

	_, err := cache.GetEmbedding(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResultCache_CorruptEntries(t *testing.T) {
	cache, backend := newTestCache(t)
	ctx := context.Background()
	key := core.EmbeddingKey("m", "corrupt")

	// A vector length prefix far beyond the stored bytes.
	corrupt := make([]byte, varint.PositiveInt.Size(math.MaxInt/4+1))
	varint.PositiveInt.Marshal(math.MaxInt/4+1, corrupt)
	corrupt = append(corrupt, 1, 2, 3, 4)

	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEmbeddingKey(key), corrupt); err != nil {
			return err
		}
		if err := tx.Set(makeCompletionKey(key), corrupt); err != nil {
			return err
		}
		return tx.Commit()
	}, true))

	_, err := cache.GetEmbedding(ctx, key)
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
	assert.ErrorIs(t, err, core.ErrTruncatedRecord)

	_, err = cache.GetCompletion(ctx, key)
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
}

func TestResultCache_PutEmbeddingsMismatch(t *testing.T) {
	cache, _ := newTestCache(t)

	err := cache.PutEmbeddings(context.Background(), []core.ID{1, 2}, []*core.CachedEmbedding{{}}, 0)
	assert.ErrorIs(t, err, storage.ErrKeyCountMismatch)
}

func TestResultCache_TTLExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for entry expiry")
	}
	cache, _ := newTestCache(t)
	ctx := context.Background()
	key := core.ID(7)

	require.NoError(t, cache.PutCompletion(ctx, key, &core.CachedCompletion{Content: "short lived"}, time.Second))
	_, err := cache.GetCompletion(ctx, key)
	require.NoError(t, err)

	time.Sleep(1500 * time.Millisecond)

	_, err = cache.GetCompletion(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResultCache_ClosedBackend(t *testing.T) {
	cache, backend := newTestCache(t)
	require.NoError(t, backend.Close())

	_, err := cache.GetCompletion(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestResultCache_CanceledContext(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cache.PutCompletion(ctx, 1, &core.CachedCompletion{}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenResultCache_OwnsBackend(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := OpenResultCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.PutCompletion(ctx, 1, &core.CachedCompletion{Content: "kept"}, 0))
	require.NoError(t, cache.Close())

	reopened, err := OpenResultCache(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetCompletion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Content)
}
