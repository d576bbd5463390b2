package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when the provider answers without any choices.
var ErrEmptyResponse = errors.New("provider returned no choices")

// ErrUnsupportedResponseFormat is returned for response formats other than text and JSON object.
var ErrUnsupportedResponseFormat = errors.New("response format not supported: use \"json_object\" for a JSON object or \"text\" for a raw string")

// ResponseFormat selects how chat content is returned.
type ResponseFormat string

const (
	// FormatText returns the raw message content.
	FormatText ResponseFormat = "text"
	// FormatJSONObject asks the model for a JSON object and decodes it.
	FormatJSONObject ResponseFormat = "json_object"
)

// ParseResponseFormat maps a user-supplied name to a ResponseFormat.
// An empty string means FormatText.
func ParseResponseFormat(s string) (ResponseFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "none":
		return FormatText, nil
	case "json_object", "json":
		return FormatJSONObject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedResponseFormat, s)
	}
}

// ChatRequest is a single chat completion call: one system prompt, one user prompt.
type ChatRequest struct {
	Model            string
	SystemPrompt     string
	Prompt           string
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	Format           ResponseFormat
}

// ChatResponse is the provider's full answer to a ChatRequest.
type ChatResponse struct {
	Choices          []ChatChoice
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Content returns the text of the first choice.
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Content
}

// ChatChoice is one candidate completion.
type ChatChoice struct {
	Content    string
	StopReason string
	ToolCalls  []ToolCall
}

// ToolCall is a function call requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}
