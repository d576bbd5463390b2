package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier used as a cache key.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CachedCompletion is a stored chat completion result.
type CachedCompletion struct {
	Content  string    // Raw message content of the first choice
	Model    string    // Model that produced the content
	StoredAt time.Time // When the entry was written
}

// CachedEmbedding is a stored embedding vector.
type CachedEmbedding struct {
	Vector   []float32
	Model    string
	StoredAt time.Time
}
