package batch

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// decodeJSONObject parses a json_object completion. Models occasionally wrap
// the object in a markdown fence or drop the opening quote of a key; both
// are tolerated.
func decodeJSONObject(content string) (map[string]any, error) {
	text := repairJSON(stripCodeFence(content))

	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: response is null", ErrMalformedJSON)
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// repairJSON inserts the missing opening quote in keys such as `{name": 1}`.
// Anything that does not match that shape is copied through unchanged.
func repairJSON(s string) string {
	src := []rune(s)
	var out strings.Builder
	out.Grow(len(s) + 16)

	for i := 0; i < len(src); {
		ch := src[i]
		out.WriteRune(ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(src) && unicode.IsSpace(src[i]) {
			out.WriteRune(src[i])
			i++
		}
		if i >= len(src) || !unicode.IsLetter(src[i]) {
			continue
		}

		start := i
		for i < len(src) && (unicode.IsLetter(src[i]) || unicode.IsDigit(src[i]) || src[i] == '_') {
			i++
		}
		if i+1 < len(src) && src[i] == '"' && src[i+1] == ':' {
			out.WriteRune('"')
		}
		out.WriteString(string(src[start:i]))
	}

	return out.String()
}
