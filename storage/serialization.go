// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/poiesic/llmbatch/core"
)

// MarshalCompletion serializes a CachedCompletion to bytes.
func MarshalCompletion(entry *core.CachedCompletion) []byte {
	buf := make([]byte, core.CachedCompletionMUS.Size(*entry))
	core.CachedCompletionMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalCompletion deserializes a CachedCompletion from bytes.
func UnmarshalCompletion(data []byte) (*core.CachedCompletion, error) {
	if err := core.CheckCompletionRecord(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	entry, _, err := core.CachedCompletionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}

// MarshalEmbedding serializes a CachedEmbedding to bytes.
func MarshalEmbedding(entry *core.CachedEmbedding) []byte {
	buf := make([]byte, core.CachedEmbeddingMUS.Size(*entry))
	core.CachedEmbeddingMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalEmbedding deserializes a CachedEmbedding from bytes.
func UnmarshalEmbedding(data []byte) (*core.CachedEmbedding, error) {
	if err := core.CheckEmbeddingRecord(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	entry, _, err := core.CachedEmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}
