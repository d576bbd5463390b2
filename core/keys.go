package core

import (
	"strconv"
	"strings"

	"github.com/poiesic/llmbatch/ai"
)

// keySep separates fields in canonical key strings. It cannot appear in
// formatted numbers and is vanishingly rare in prompts.
const keySep = "\x1f"

// ChatKey derives the cache key for a chat request.
// Every field that can change the model's answer takes part in the key.
func ChatKey(req ai.ChatRequest) ID {
	format := req.Format
	if format == "" {
		format = ai.FormatText
	}
	parts := []string{
		"chat",
		req.Model,
		string(format),
		strconv.Itoa(req.MaxTokens),
		formatFloat(req.Temperature),
		formatFloat(req.TopP),
		formatFloat(req.FrequencyPenalty),
		formatFloat(req.PresencePenalty),
		req.SystemPrompt,
		req.Prompt,
	}
	return IDFromContent(strings.Join(parts, keySep))
}

// EmbeddingKey derives the cache key for one embedding input.
func EmbeddingKey(model, text string) ID {
	return IDFromContent("embedding" + keySep + model + keySep + text)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
