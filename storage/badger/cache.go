package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/llmbatch/core"
	"github.com/poiesic/llmbatch/storage"
)

// ResultCache implements storage.ResultCache for BadgerDB.
type ResultCache struct {
	backend *Backend
	owned   bool
}

var _ storage.ResultCache = (*ResultCache)(nil)

// NewResultCache creates a cache on top of an open backend.
// The caller keeps ownership of the backend and must close it.
func NewResultCache(backend *Backend) (storage.ResultCache, error) {
	return newResultCache(backend, false)
}

// OpenResultCache opens a backend at path and returns a cache that owns it.
// Closing the cache closes the backend.
func OpenResultCache(path string) (storage.ResultCache, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	cache, err := newResultCache(backend, true)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return cache, nil
}

func newResultCache(backend *Backend, owned bool) (*ResultCache, error) {
	if backend == nil {
		return nil, errors.New("badger: backend is required")
	}
	return &ResultCache{backend: backend, owned: owned}, nil
}

// Close releases the backend if the cache owns it.
func (c *ResultCache) Close() error {
	if !c.owned || c.backend.IsClosed() {
		return nil
	}
	return c.backend.Close()
}

// GetCompletion retrieves a cached chat completion.
func (c *ResultCache) GetCompletion(ctx context.Context, key core.ID) (*core.CachedCompletion, error) {
	var entry *core.CachedCompletion
	err := c.read(ctx, makeCompletionKey(key), func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalCompletion(val)
		return err
	})
	return entry, err
}

// PutCompletion stores a chat completion.
func (c *ResultCache) PutCompletion(ctx context.Context, key core.ID, entry *core.CachedCompletion, ttl time.Duration) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now().UTC()
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.SetEntry(newEntry(makeCompletionKey(key), storage.MarshalCompletion(entry), ttl)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEmbedding retrieves a cached embedding.
func (c *ResultCache) GetEmbedding(ctx context.Context, key core.ID) (*core.CachedEmbedding, error) {
	var entry *core.CachedEmbedding
	err := c.read(ctx, makeEmbeddingKey(key), func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalEmbedding(val)
		return err
	})
	return entry, err
}

// PutEmbeddings stores several embeddings in one transaction.
func (c *ResultCache) PutEmbeddings(ctx context.Context, keys []core.ID, entries []*core.CachedEmbedding, ttl time.Duration) error {
	if len(keys) != len(entries) {
		return fmt.Errorf("%w: %d keys, %d entries", storage.ErrKeyCountMismatch, len(keys), len(entries))
	}
	if err := c.check(ctx); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	now := time.Now().UTC()
	return c.backend.WithTx(func(tx *badger.Txn) error {
		for i, entry := range entries {
			if entry.StoredAt.IsZero() {
				entry.StoredAt = now
			}
			if err := tx.SetEntry(newEntry(makeEmbeddingKey(keys[i]), storage.MarshalEmbedding(entry), ttl)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Helper methods

func (c *ResultCache) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// read looks up key and hands its value to fn. Expired entries are
// invisible to badger reads, so they surface as storage.ErrNotFound.
func (c *ResultCache) read(ctx context.Context, key []byte, fn func(val []byte) error) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(fn)
	}, false)
}

func newEntry(key, value []byte, ttl time.Duration) *badger.Entry {
	e := badger.NewEntry(key, value)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return e
}
