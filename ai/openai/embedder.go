package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/llmbatch/ai"
	"github.com/tmc/langchaingo/embeddings"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// Each EmbedTexts call is exactly one HTTP request; chunking is the caller's job.
type Embedder struct {
	client embeddings.EmbedderClient
	model  string
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

func newEmbedder(client embeddings.EmbedderClient, model string) *Embedder {
	return &Embedder{
		client: client,
		model:  model,
		logger: slog.Default().With("component", "openai-embedder"),
	}
}

// EmbedTexts generates vector embeddings for all texts in a single request.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	e.logger.Debug("generating embeddings for texts", "count", len(texts), "model", e.model)

	vectors, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		e.logger.Debug("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(texts), len(vectors))
	}

	return vectors, nil
}
