package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/llmbatch/ai"
	"github.com/poiesic/llmbatch/core"
	"github.com/poiesic/llmbatch/storage"
	"golang.org/x/sync/errgroup"
)

// EmbedBatcher embeds many inputs as concurrent chunked requests.
type EmbedBatcher struct {
	*base
	embedder ai.Embedder
}

// NewEmbedBatcher creates an embedding batcher around embedder.
func NewEmbedBatcher(embedder ai.Embedder, opts ...Option) (*EmbedBatcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	b, err := newBase("embed-batcher", opts)
	if err != nil {
		return nil, err
	}
	return &EmbedBatcher{base: b, embedder: embedder}, nil
}

// Embed returns one vector per input, in input order.
//
// Inputs are split into chunks of BatchSize, each chunk is one retried
// request, and up to Concurrency chunks are in flight at once. The first
// failed chunk cancels the rest; ContinueOnError does not apply here.
func (e *EmbedBatcher) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return e.EmbedAsync(ctx, inputs).Wait(ctx)
}

// EmbedAsync starts Embed in the background.
func (e *EmbedBatcher) EmbedAsync(ctx context.Context, inputs []string) *Future[[][]float32] {
	return Go(ctx, func(ctx context.Context) ([][]float32, error) {
		return e.embed(ctx, inputs)
	})
}

// EmbedOne embeds a single input.
func (e *EmbedBatcher) EmbedOne(ctx context.Context, input string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{input})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *EmbedBatcher) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if err := core.ValidateEmbeddingInputs(inputs); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(inputs))
	if len(inputs) == 0 {
		return vectors, nil
	}

	start := time.Now()
	defer e.metrics.observeBatch(kindEmbedding, start)

	progress := e.newProgress(len(inputs))
	defer progress.Finish()

	pending := e.fromCache(ctx, inputs, vectors)
	progress.Update(len(inputs) - len(pending))
	if len(pending) == 0 {
		return vectors, nil
	}

	chunks, err := Chunk(pending, e.config.BatchSize)
	if err != nil {
		return nil, err
	}
	e.logf(ctx, "dispatching embedding requests", "inputs", len(pending), "chunks", len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency())
	for _, chunk := range chunks {
		g.Go(func() error {
			texts := make([]string, len(chunk))
			for i, idx := range chunk {
				texts[i] = inputs[idx]
			}

			result, err := e.embedChunk(ctx, texts)
			if err != nil {
				return &ItemError{Index: chunk[0], Err: err}
			}
			for i, idx := range chunk {
				vectors[idx] = result[i]
			}
			e.store(ctx, texts, result)
			progress.Increment(len(chunk))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// embedChunk is the retried unit: one request for one chunk.
func (e *EmbedBatcher) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := RetryWithBackoff(ctx, e.config.Retry, func() ([][]float32, error) {
		if err := e.waitTurn(ctx); err != nil {
			return nil, Permanent(err)
		}
		result, err := e.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(result) != len(texts) {
			return nil, Permanent(fmt.Errorf("%w: expected %d, received %d", ErrCountMismatch, len(texts), len(result)))
		}
		return result, nil
	}, func(err error, wait time.Duration) {
		e.metrics.observeRetry(kindEmbedding)
		e.logger.Warn("embedding request failed, retrying", "size", len(texts), "wait", wait, "err", err)
	})
	e.metrics.observeRequest(kindEmbedding, err)
	return result, err
}

// fromCache fills vectors from the cache and returns the indexes still missing.
func (e *EmbedBatcher) fromCache(ctx context.Context, inputs []string, vectors [][]float32) []int {
	pending := make([]int, 0, len(inputs))
	hits := 0
	for i, input := range inputs {
		if e.cache == nil {
			pending = append(pending, i)
			continue
		}
		entry, err := e.cache.GetEmbedding(ctx, core.EmbeddingKey(e.embeddingModel, input))
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				e.logger.Warn("cache lookup failed", "index", i, "err", err)
			}
			pending = append(pending, i)
			continue
		}
		vectors[i] = entry.Vector
		hits++
	}
	e.metrics.observeCacheHits(kindEmbedding, hits)
	return pending
}

func (e *EmbedBatcher) store(ctx context.Context, texts []string, vectors [][]float32) {
	if e.cache == nil {
		return
	}
	keys := make([]core.ID, len(texts))
	entries := make([]*core.CachedEmbedding, len(texts))
	for i, text := range texts {
		keys[i] = core.EmbeddingKey(e.embeddingModel, text)
		entries[i] = &core.CachedEmbedding{Vector: vectors[i], Model: e.embeddingModel}
	}
	if err := e.cache.PutEmbeddings(ctx, keys, entries, e.cacheTTL); err != nil {
		e.logger.Warn("failed to cache embeddings", "count", len(texts), "err", err)
	}
}
