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


package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBatchSize is returned when a batch size is < 1.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidConcurrency is returned when concurrency is negative.
	ErrInvalidConcurrency = errors.New("concurrency must not be negative")

	// ErrInvalidWait is returned when a retry or pacing duration is negative or inverted.
	ErrInvalidWait = errors.New("invalid wait duration")

	// ErrCompleterRequired is returned when a chat batcher is built without a client.
	ErrCompleterRequired = errors.New("chat completer is required")

	// ErrEmbedderRequired is returned when an embedding batcher is built without a client.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrMalformedJSON is returned when a json_object completion does not parse.
	ErrMalformedJSON = errors.New("malformed JSON response")

	// ErrCountMismatch is returned when a provider returns a different
	// number of vectors than inputs it was sent.
	ErrCountMismatch = errors.New("embedding count mismatch")

	// ErrTaskPanicked is returned by a Future whose function panicked.
	ErrTaskPanicked = errors.New("task panicked")
)

// ItemError reports the failure of a single input.
// Index is the position of the input in the caller's list.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
