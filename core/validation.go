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

import (
	"fmt"

	"github.com/poiesic/llmbatch/ai"
)

// ValidateChatRequest validates the sampling parameters of a chat request
// before any request is sent, so a bad value fails once instead of being retried.
//
// Validation rules:
//   - MaxTokens must not be negative (0 means provider default)
//   - Temperature must be within [0, 2]
//   - TopP must be within [0, 1]
//   - FrequencyPenalty and PresencePenalty must be within [-2, 2]
//   - Format must be text, JSON object or empty
//
// NOT validated:
//   - Prompt and SystemPrompt (empty strings are legal)
//   - Model (the provider rejects unknown models)
func ValidateChatRequest(req ai.ChatRequest) error {
	if req.MaxTokens < 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidChatRequest, ErrInvalidMaxTokens, req.MaxTokens)
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return fmt.Errorf("%w: %w: %g", ErrInvalidChatRequest, ErrInvalidTemperature, req.Temperature)
	}
	if req.TopP < 0 || req.TopP > 1 {
		return fmt.Errorf("%w: %w: %g", ErrInvalidChatRequest, ErrInvalidTopP, req.TopP)
	}
	if !validPenalty(req.FrequencyPenalty) {
		return fmt.Errorf("%w: frequency %w: %g", ErrInvalidChatRequest, ErrInvalidPenalty, req.FrequencyPenalty)
	}
	if !validPenalty(req.PresencePenalty) {
		return fmt.Errorf("%w: presence %w: %g", ErrInvalidChatRequest, ErrInvalidPenalty, req.PresencePenalty)
	}
	switch req.Format {
	case "", ai.FormatText, ai.FormatJSONObject:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidChatRequest, ai.ErrUnsupportedResponseFormat, req.Format)
	}
	return nil
}

// ValidateEmbeddingInputs checks that no input is empty.
// OpenAI rejects the whole request when any input is empty.
func ValidateEmbeddingInputs(inputs []string) error {
	for i, in := range inputs {
		if in == "" {
			return fmt.Errorf("%w: index %d", ErrEmptyInput, i)
		}
	}
	return nil
}

func validPenalty(p float64) bool {
	return p >= -2 && p <= 2
}
