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


package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/llmbatch/ai"
	"github.com/tmc/langchaingo/llms"
)

// ChatCompleter implements ai.ChatCompleter using OpenAI-compatible chat APIs.
type ChatCompleter struct {
	client       llms.Model
	defaultModel string
	logger       *slog.Logger
}

var _ ai.ChatCompleter = (*ChatCompleter)(nil)

func newChatCompleter(client llms.Model, defaultModel string) *ChatCompleter {
	return &ChatCompleter{
		client:       client,
		defaultModel: defaultModel,
		logger:       slog.Default().With("component", "openai-chat"),
	}
}

// Complete sends a single system+user conversation and returns every choice.
func (c *ChatCompleter) Complete(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	content := make([]llms.MessageContent, 0, 2)
	if req.SystemPrompt != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	opts := []llms.CallOption{
		llms.WithModel(model),
		llms.WithTemperature(req.Temperature),
		llms.WithTopP(req.TopP),
		llms.WithFrequencyPenalty(req.FrequencyPenalty),
		llms.WithPresencePenalty(req.PresencePenalty),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Format == ai.FormatJSONObject {
		opts = append(opts, llms.WithJSONMode())
	}

	c.logger.Debug("sending chat completion", "model", model, "prompt_length", len(req.Prompt))

	response, err := c.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		c.logger.Debug("chat completion failed", "model", model, "err", err)
		return nil, err
	}

	if response == nil || len(response.Choices) == 0 {
		return nil, ai.ErrEmptyResponse
	}

	return convertResponse(response), nil
}

// convertResponse maps langchaingo's response onto ai.ChatResponse.
// Token usage is reported per choice in GenerationInfo; the first choice carries it.
func convertResponse(response *llms.ContentResponse) *ai.ChatResponse {
	out := &ai.ChatResponse{
		Choices: make([]ai.ChatChoice, 0, len(response.Choices)),
	}

	for i, choice := range response.Choices {
		if choice == nil {
			continue
		}
		converted := ai.ChatChoice{
			Content:    choice.Content,
			StopReason: choice.StopReason,
		}
		for _, tc := range choice.ToolCalls {
			call := ai.ToolCall{ID: tc.ID}
			if tc.FunctionCall != nil {
				call.Name = tc.FunctionCall.Name
				call.Arguments = tc.FunctionCall.Arguments
			}
			converted.ToolCalls = append(converted.ToolCalls, call)
		}
		out.Choices = append(out.Choices, converted)

		if i == 0 {
			out.PromptTokens = intFromInfo(choice.GenerationInfo, "PromptTokens")
			out.CompletionTokens = intFromInfo(choice.GenerationInfo, "CompletionTokens")
			out.TotalTokens = intFromInfo(choice.GenerationInfo, "TotalTokens")
		}
	}

	return out
}

func intFromInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
