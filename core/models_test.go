package core

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/llmbatch/ai"
)

func TestIDFromContent(t *testing.T) {
	a := IDFromContent("hello")
	b := IDFromContent("hello")
	c := IDFromContent("hello!")

	if a != b {
		t.Errorf("same content produced different IDs: %d vs %d", a, b)
	}
	if a == c {
		t.Errorf("different content produced the same ID %d", a)
	}
}

func TestChatKey(t *testing.T) {
	base := ai.ChatRequest{
		Model:        "gpt-4o-mini",
		SystemPrompt: "be brief",
		Prompt:       "capital of spain",
		MaxTokens:    256,
		Temperature:  1,
		TopP:         1,
	}

	if ChatKey(base) != ChatKey(base) {
		t.Fatal("ChatKey is not deterministic")
	}

	withText := base
	withText.Format = ai.FormatText
	if ChatKey(base) != ChatKey(withText) {
		t.Error("empty format and text format should share a key")
	}

	variants := map[string]func(r *ai.ChatRequest){
		"model":       func(r *ai.ChatRequest) { r.Model = "gpt-4o" },
		"system":      func(r *ai.ChatRequest) { r.SystemPrompt = "be verbose" },
		"prompt":      func(r *ai.ChatRequest) { r.Prompt = "capital of italy" },
		"max tokens":  func(r *ai.ChatRequest) { r.MaxTokens = 10 },
		"temperature": func(r *ai.ChatRequest) { r.Temperature = 0.2 },
		"top p":       func(r *ai.ChatRequest) { r.TopP = 0.9 },
		"frequency":   func(r *ai.ChatRequest) { r.FrequencyPenalty = 0.5 },
		"presence":    func(r *ai.ChatRequest) { r.PresencePenalty = 0.5 },
		"format":      func(r *ai.ChatRequest) { r.Format = ai.FormatJSONObject },
	}
	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			r := base
			mutate(&r)
			if ChatKey(r) == ChatKey(base) {
				t.Errorf("changing %s did not change the key", name)
			}
		})
	}

	t.Run("field boundaries are unambiguous", func(t *testing.T) {
		a := base
		a.SystemPrompt, a.Prompt = "ab", "c"
		b := base
		b.SystemPrompt, b.Prompt = "a", "bc"
		if ChatKey(a) == ChatKey(b) {
			t.Error("shifting text between system prompt and prompt must change the key")
		}
	})
}

func TestEmbeddingKey(t *testing.T) {
	if EmbeddingKey("m", "text") != EmbeddingKey("m", "text") {
		t.Error("EmbeddingKey is not deterministic")
	}
	if EmbeddingKey("m1", "text") == EmbeddingKey("m2", "text") {
		t.Error("model must take part in the key")
	}
}

func TestCachedCompletionMUS(t *testing.T) {
	in := CachedCompletion{
		Content:  `{"city":"Madrid"}`,
		Model:    "gpt-4o-mini",
		StoredAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	buf := make([]byte, CachedCompletionMUS.Size(in))
	n := CachedCompletionMUS.Marshal(in, buf)
	if n != len(buf) {
		t.Fatalf("Marshal wrote %d bytes, Size reported %d", n, len(buf))
	}

	out, read, err := CachedCompletionMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if read != n {
		t.Errorf("Unmarshal read %d bytes, want %d", read, n)
	}
	if out.Content != in.Content || out.Model != in.Model || !out.StoredAt.Equal(in.StoredAt) {
		t.Errorf("Unmarshal() = %+v, want %+v", out, in)
	}

	skipped, err := CachedCompletionMUS.Skip(buf)
	if err != nil || skipped != n {
		t.Errorf("Skip() = %d, %v; want %d, nil", skipped, err, n)
	}
}

func TestCachedEmbeddingMUS(t *testing.T) {
	in := CachedEmbedding{
		Vector:   []float32{0.25, -1.5, 3},
		Model:    "text-embedding-3-small",
		StoredAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	buf := make([]byte, CachedEmbeddingMUS.Size(in))
	CachedEmbeddingMUS.Marshal(in, buf)

	out, _, err := CachedEmbeddingMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(out.Vector) != len(in.Vector) {
		t.Fatalf("vector length = %d, want %d", len(out.Vector), len(in.Vector))
	}
	for i := range in.Vector {
		if out.Vector[i] != in.Vector[i] {
			t.Errorf("vector[%d] = %v, want %v", i, out.Vector[i], in.Vector[i])
		}
	}
	if out.Model != in.Model || !out.StoredAt.Equal(in.StoredAt) {
		t.Errorf("Unmarshal() = %+v, want %+v", out, in)
	}

	t.Run("truncated vector", func(t *testing.T) {
		if err := CheckEmbeddingRecord(buf[:3]); !errors.Is(err, ErrTruncatedRecord) {
			t.Errorf("CheckEmbeddingRecord(truncated) error = %v, want %v", err, ErrTruncatedRecord)
		}
	})
	if err := CheckEmbeddingRecord(buf); err != nil {
		t.Errorf("CheckEmbeddingRecord(valid) error = %v", err)
	}
}

// lengthPrefixed encodes length as a varint followed by tail.
func lengthPrefixed(length int, tail ...byte) []byte {
	bs := make([]byte, varint.PositiveInt.Size(length))
	varint.PositiveInt.Marshal(length, bs)
	return append(bs, tail...)
}

func TestCheckRecord_CorruptLengths(t *testing.T) {
	lengths := map[string]int{
		"one past the buffer":     8,
		"overflows four per item": math.MaxInt/4 + 1,
		"max int":                 math.MaxInt,
	}
	for name, length := range lengths {
		t.Run(name, func(t *testing.T) {
			bs := lengthPrefixed(length, 1, 2, 3, 4)
			if err := CheckEmbeddingRecord(bs); !errors.Is(err, ErrTruncatedRecord) {
				t.Errorf("CheckEmbeddingRecord() error = %v, want %v", err, ErrTruncatedRecord)
			}
			if err := CheckCompletionRecord(bs); !errors.Is(err, ErrTruncatedRecord) {
				t.Errorf("CheckCompletionRecord() error = %v, want %v", err, ErrTruncatedRecord)
			}
		})
	}

	t.Run("bad model length after valid content", func(t *testing.T) {
		bs := lengthPrefixed(2, 'h', 'i')
		bs = append(bs, lengthPrefixed(math.MaxInt)...)
		if err := CheckCompletionRecord(bs); !errors.Is(err, ErrTruncatedRecord) {
			t.Errorf("CheckCompletionRecord() error = %v, want %v", err, ErrTruncatedRecord)
		}
	})

	t.Run("valid completion", func(t *testing.T) {
		in := CachedCompletion{Content: "hi", Model: "m"}
		bs := make([]byte, CachedCompletionMUS.Size(in))
		CachedCompletionMUS.Marshal(in, bs)
		if err := CheckCompletionRecord(bs); err != nil {
			t.Errorf("CheckCompletionRecord() error = %v", err)
		}
	})
}
