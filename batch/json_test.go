package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]any
	}{
		{"plain", `{"a": 1}`, map[string]any{"a": float64(1)}},
		{"fenced", "```json\n{\"a\": \"x\"}\n```", map[string]any{"a": "x"}},
		{"bare fence", "```\n{\"a\": true}\n```", map[string]any{"a": true}},
		{"missing key quote", `{"a": 1, b": 2}`, map[string]any{"a": float64(1), "b": float64(2)}},
		{"first key unquoted", `{ name": "x"}`, map[string]any{"name": "x"}},
		{"values untouched", `{"list": [1, true, null], "s": "x, y"}`, map[string]any{"list": []any{float64(1), true, nil}, "s": "x, y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeJSONObject(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSONObject_Errors(t *testing.T) {
	for _, content := range []string{"", "not json", "[1, 2]", "null", `{"a": `} {
		_, err := decodeJSONObject(content)
		assert.ErrorIs(t, err, ErrMalformedJSON, "content %q", content)
	}
}
