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


package core

import "errors"

// Request validation errors
var (
	// ErrInvalidChatRequest indicates a ChatRequest failed validation.
	ErrInvalidChatRequest = errors.New("invalid chat request")

	// ErrInvalidMaxTokens indicates a negative token limit.
	ErrInvalidMaxTokens = errors.New("max tokens cannot be negative")

	// ErrInvalidTemperature indicates a temperature outside [0, 2].
	ErrInvalidTemperature = errors.New("temperature must be between 0 and 2")

	// ErrInvalidTopP indicates a top_p outside [0, 1].
	ErrInvalidTopP = errors.New("top_p must be between 0 and 1")

	// ErrInvalidPenalty indicates a frequency or presence penalty outside [-2, 2].
	ErrInvalidPenalty = errors.New("penalty must be between -2 and 2")

	// ErrEmptyInput indicates an empty embedding input.
	ErrEmptyInput = errors.New("embedding input cannot be empty")
)

// Serialization errors
var (
	// ErrTruncatedRecord indicates a cache record shorter than its declared contents.
	ErrTruncatedRecord = errors.New("truncated cache record")
)
