package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/llmbatch/ai/mock"
	"github.com/poiesic/llmbatch/core"
	"github.com/poiesic/llmbatch/storage/badger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbedBatcher(t *testing.T, embedder *mock.MockEmbedder, cfg Config, opts ...Option) *EmbedBatcher {
	t.Helper()
	b, err := NewEmbedBatcher(embedder, append([]Option{WithConfig(cfg)}, opts...)...)
	require.NoError(t, err)
	return b
}

func TestNewEmbedBatcher_RequiresEmbedder(t *testing.T) {
	_, err := NewEmbedBatcher(nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestEmbed_ChunksAndFlattens(t *testing.T) {
	embedder := &mock.MockEmbedder{Dimensions: 8}
	cfg := fastConfig()
	cfg.BatchSize = 2

	b := newTestEmbedBatcher(t, embedder, cfg)
	inputs := []string{"a", "b", "c", "d", "e"}

	vectors, err := b.Embed(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, vectors, len(inputs))
	for i, input := range inputs {
		assert.Equal(t, mock.DeterministicVector(input, 8), vectors[i], "vector %d out of order", i)
	}

	assert.Equal(t, 3, embedder.CallCount(), "one request per chunk")
	sizes := []int{}
	for _, batch := range embedder.Batches() {
		sizes = append(sizes, len(batch))
	}
	assert.ElementsMatch(t, []int{2, 2, 1}, sizes)
}

func TestEmbed_EmptyInput(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	b := newTestEmbedBatcher(t, embedder, fastConfig())

	vectors, err := b.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, embedder.CallCount())
}

func TestEmbed_RejectsEmptyString(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	b := newTestEmbedBatcher(t, embedder, fastConfig())

	_, err := b.Embed(context.Background(), []string{"a", ""})
	assert.ErrorIs(t, err, core.ErrEmptyInput)
	assert.Zero(t, embedder.CallCount())
}

func TestEmbed_CountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})
	b := newTestEmbedBatcher(t, embedder, fastConfig())

	_, err := b.Embed(context.Background(), []string{"a", "b"})
	require.ErrorIs(t, err, ErrCountMismatch)
	assert.Equal(t, 1, embedder.CallCount(), "a mismatch is not retried")
}

func TestEmbed_RetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	unavailable := errors.New("503 service unavailable")
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		calls.Add(1)
		return nil, unavailable
	})
	cfg := fastConfig()
	cfg.Concurrency = 1

	b := newTestEmbedBatcher(t, embedder, cfg)
	_, err := b.Embed(context.Background(), []string{"a"})
	require.ErrorIs(t, err, unavailable)

	var itemErr *ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 0, itemErr.Index)
	assert.Equal(t, int32(cfg.Retry.MaxAttempts), calls.Load())
}

func TestEmbed_Cache(t *testing.T) {
	cache, backend, err := badger.NewMemoryCache()
	require.NoError(t, err)
	defer backend.Close()

	metrics, err := NewMetrics(nil)
	require.NoError(t, err)

	embedder := &mock.MockEmbedder{Dimensions: 4}
	b := newTestEmbedBatcher(t, embedder, fastConfig(),
		WithCache(cache, 0), WithEmbeddingModel("text-embedding-3-small"), WithMetrics(metrics))
	ctx := context.Background()

	_, err = b.Embed(ctx, []string{"a", "b"})
	require.NoError(t, err)

	vectors, err := b.Embed(ctx, []string{"b", "c", "a"})
	require.NoError(t, err)
	assert.Equal(t, mock.DeterministicVector("b", 4), vectors[0])
	assert.Equal(t, mock.DeterministicVector("c", 4), vectors[1])
	assert.Equal(t, mock.DeterministicVector("a", 4), vectors[2])

	batches := embedder.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"c"}, batches[1], "only misses are sent")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.cacheHits.WithLabelValues(kindEmbedding)))
}

func TestEmbed_ProgressCountsCacheHits(t *testing.T) {
	cache, backend, err := badger.NewMemoryCache()
	require.NoError(t, err)
	defer backend.Close()

	embedder := &mock.MockEmbedder{Dimensions: 4}
	ctx := context.Background()
	warm := newTestEmbedBatcher(t, embedder, fastConfig(), WithCache(cache, 0))
	_, err = warm.Embed(ctx, []string{"a", "b"})
	require.NoError(t, err)

	var buf bytes.Buffer
	b := newTestEmbedBatcher(t, embedder, fastConfig(), WithCache(cache, 0), WithProgress(&buf, 1))
	_, err = b.Embed(ctx, []string{"b", "c", "a"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "2/3", "cache hits are reported before requests")
	assert.Contains(t, buf.String(), "3/3")
}

func TestEmbedOneAndAsync(t *testing.T) {
	embedder := &mock.MockEmbedder{Dimensions: 4}
	b := newTestEmbedBatcher(t, embedder, fastConfig())

	vector, err := b.EmbedOne(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, mock.DeterministicVector("hello", 4), vector)

	vectors, err := b.EmbedAsync(context.Background(), []string{"x", "y"}).Wait(context.Background())
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
}

func TestEmbed_RespectsConcurrency(t *testing.T) {
	var tracker peakTracker
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		tracker.enter()
		defer tracker.leave()
		time.Sleep(2 * time.Millisecond)
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.DeterministicVector(text, 4)
		}
		return out, nil
	})
	cfg := fastConfig()
	cfg.BatchSize = 2
	cfg.Concurrency = 3

	inputs := make([]string, 24)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("input %d", i)
	}

	b := newTestEmbedBatcher(t, embedder, cfg)
	vectors, err := b.Embed(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, vectors, len(inputs))

	assert.Equal(t, 12, embedder.CallCount(), "one request per chunk")
	assert.LessOrEqual(t, tracker.peak.Load(), int32(3))
	assert.GreaterOrEqual(t, tracker.peak.Load(), int32(1))
}

func TestEmbed_MaxIntBatchSize(t *testing.T) {
	embedder := &mock.MockEmbedder{Dimensions: 4}
	cfg := fastConfig()
	cfg.BatchSize = math.MaxInt
	cfg.Concurrency = 2

	b := newTestEmbedBatcher(t, embedder, cfg)
	vectors, err := b.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, 1, embedder.CallCount())
}
