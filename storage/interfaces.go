package storage

import (
	"context"
	"time"

	"github.com/poiesic/llmbatch/core"
)

// ResultCache stores provider results keyed by request content.
// Implementations must be thread-safe and support concurrent access.
type ResultCache interface {
	// GetCompletion retrieves a cached chat completion.
	// Returns ErrNotFound if no entry exists or it has expired.
	GetCompletion(ctx context.Context, key core.ID) (*core.CachedCompletion, error)

	// PutCompletion stores a chat completion. A ttl of zero never expires.
	// Sets StoredAt if not already set.
	PutCompletion(ctx context.Context, key core.ID, entry *core.CachedCompletion, ttl time.Duration) error

	// GetEmbedding retrieves a cached embedding.
	// Returns ErrNotFound if no entry exists or it has expired.
	GetEmbedding(ctx context.Context, key core.ID) (*core.CachedEmbedding, error)

	// PutEmbeddings stores several embeddings in one transaction.
	// keys and entries must have the same length.
	PutEmbeddings(ctx context.Context, keys []core.ID, entries []*core.CachedEmbedding, ttl time.Duration) error

	// Close releases the cache's resources.
	Close() error
}
