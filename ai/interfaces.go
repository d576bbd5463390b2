package ai

import "context"

// ChatCompleter performs a single chat completion request.
// Implementations must be thread-safe for concurrent use.
type ChatCompleter interface {
	// Complete sends one request and returns the full response.
	// Returns ErrEmptyResponse if the provider returned no choices.
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedTexts sends all texts in one request.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates the chat and embedding clients that share one API handle.
type Provider interface {
	// Chat returns the chat completion client.
	Chat() ChatCompleter

	// Embedder returns the embedding client.
	Embedder() Embedder

	// Close releases resources held by the provider and its clients.
	Close() error
}
