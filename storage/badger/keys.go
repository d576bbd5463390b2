package badger

import (
	"fmt"

	"github.com/poiesic/llmbatch/core"
)

// Key prefixes for different data types
const (
	completionPrefix = "cmpl"
	embeddingPrefix  = "embd"
)

// makeCompletionKey generates a key for a cached completion.
func makeCompletionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", completionPrefix, id))
}

// makeEmbeddingKey generates a key for a cached embedding.
func makeEmbeddingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingPrefix, id))
}
