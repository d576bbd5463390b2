package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/llmbatch"
	"github.com/poiesic/llmbatch/ai"
	"github.com/poiesic/llmbatch/batch"
	"github.com/urfave/cli/v2"
)

// maxLineSize bounds a single input line.
const maxLineSize = 4 << 20

// chatOutput is one line of chat command output.
type chatOutput struct {
	Index   int            `json:"index"`
	Content string         `json:"content,omitempty"`
	JSON    map[string]any `json:"json,omitempty"`
	Cached  bool           `json:"cached,omitempty"`
	Tokens  int            `json:"total_tokens,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// embedOutput is one line of embed command output.
type embedOutput struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// inputLine is the JSONL input shape.
type inputLine struct {
	Text string `json:"text"`
}

func chatCommand(c *cli.Context) error {
	format, err := ai.ParseResponseFormat(c.String("response-format"))
	if err != nil {
		return err
	}

	prompts, err := readInputs(c)
	if err != nil {
		return err
	}

	client, err := newClient(c, ai.WithChatModel(c.String("model")))
	if err != nil {
		return err
	}
	defer client.Close()

	params := batch.ChatParams{
		Model:            c.String("model"),
		SystemPrompt:     c.String("system-prompt"),
		MaxTokens:        c.Int("max-tokens"),
		Temperature:      c.Float64("temperature"),
		TopP:             c.Float64("top-p"),
		FrequencyPenalty: c.Float64("frequency-penalty"),
		PresencePenalty:  c.Float64("presence-penalty"),
		Format:           format,
	}

	results, err := client.Chat(c.Context, prompts, params)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	w := bufio.NewWriter(c.App.Writer)
	enc := json.NewEncoder(w)
	for _, r := range results {
		out := chatOutput{
			Index:   r.Index,
			Content: r.Content,
			JSON:    r.JSON,
			Cached:  r.Cached,
		}
		if r.Response != nil {
			out.Tokens = r.Response.TotalTokens
		}
		if r.Err != nil {
			out.Error = r.Err.Error()
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return w.Flush()
}

func embedCommand(c *cli.Context) error {
	inputs, err := readInputs(c)
	if err != nil {
		return err
	}

	client, err := newClient(c, ai.WithEmbeddingModel(c.String("model")))
	if err != nil {
		return err
	}
	defer client.Close()

	vectors, err := client.Embed(c.Context, inputs)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	w := bufio.NewWriter(c.App.Writer)
	enc := json.NewEncoder(w)
	for i, v := range vectors {
		if err := enc.Encode(embedOutput{Index: i, Embedding: v}); err != nil {
			return err
		}
	}
	return w.Flush()
}

// newClient builds a client from the common flags.
func newClient(c *cli.Context, modelOpt ai.ConfigOption) (*llmbatch.Client, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithAPIKey(c.String("api-key")),
		modelOpt,
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	config := batch.DefaultConfig()
	config.BatchSize = c.Int("batch-size")
	config.Concurrency = c.Int("concurrency")
	config.SleepInterval = c.Duration("sleep-interval")
	config.RequestsPerMinute = c.Int("rpm")
	config.Retry.MaxAttempts = c.Int("max-attempts")
	config.Retry.MinWait = c.Duration("min-wait")
	config.Retry.MaxWait = c.Duration("max-wait")
	config.ContinueOnError = c.Bool("continue-on-error")
	config.Verbose = c.Bool("verbose")
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch configuration: %w", err)
	}

	opts := []llmbatch.Option{
		llmbatch.WithAIConfig(aiConfig),
		llmbatch.WithBatchConfig(config),
	}
	if dir := c.String("cache-dir"); dir != "" {
		opts = append(opts, llmbatch.WithCacheDir(dir), llmbatch.WithCacheTTL(c.Duration("cache-ttl")))
	}
	if c.Bool("progress") {
		opts = append(opts, llmbatch.WithProgress(c.App.ErrWriter))
	}

	return llmbatch.New(opts...)
}

// readInputs reads one input per line from --input or the app's reader.
// Blank lines are skipped.
func readInputs(c *cli.Context) ([]string, error) {
	var r io.Reader = c.App.Reader
	if path := c.String("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	jsonl := c.Bool("jsonl")
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var inputs []string
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		if jsonl {
			var in inputLine
			if err := json.Unmarshal([]byte(text), &in); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			text = in.Text
		}
		inputs = append(inputs, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, errors.New("no input")
	}
	return inputs, nil
}
