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
	"context"
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/llmbatch/ai"
	"github.com/poiesic/llmbatch/core"
	"github.com/poiesic/llmbatch/storage"
)

// DefaultChatModel is the model used when ChatParams.Model is empty and the
// params came from DefaultChatParams.
const DefaultChatModel = "gpt-4o-2024-05-13"

// ChatParams are the per-call settings applied to every prompt.
type ChatParams struct {
	Model            string
	SystemPrompt     string
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	Format           ai.ResponseFormat
}

// DefaultChatParams returns the defaults: 256 max tokens, temperature 1,
// top_p 1, no penalties, text format.
func DefaultChatParams() ChatParams {
	return ChatParams{
		Model:       DefaultChatModel,
		MaxTokens:   256,
		Temperature: 1,
		TopP:        1,
		Format:      ai.FormatText,
	}
}

func (p ChatParams) request(prompt string) ai.ChatRequest {
	format := p.Format
	if format == "" {
		format = ai.FormatText
	}
	return ai.ChatRequest{
		Model:            p.Model,
		SystemPrompt:     p.SystemPrompt,
		Prompt:           prompt,
		MaxTokens:        p.MaxTokens,
		Temperature:      p.Temperature,
		TopP:             p.TopP,
		FrequencyPenalty: p.FrequencyPenalty,
		PresencePenalty:  p.PresencePenalty,
		Format:           format,
	}
}

// ChatResult is the outcome for one prompt.
type ChatResult struct {
	// Index is the prompt's position in the input.
	Index int

	// Content is the message text of the first choice.
	Content string

	// JSON is the decoded object when the format is json_object.
	JSON map[string]any

	// Response is the full provider response. Nil for cached results.
	Response *ai.ChatResponse

	// Cached reports that the result came from the result cache.
	Cached bool

	// Err is set only when ContinueOnError is enabled and this prompt failed.
	Err error
}

// ChatBatcher sends many chat prompts with bounded concurrency, retries and pacing.
type ChatBatcher struct {
	*base
	completer ai.ChatCompleter
	pool      *ants.Pool
}

// NewChatBatcher creates a chat batcher around completer.
// Release must be called when the batcher is no longer needed.
func NewChatBatcher(completer ai.ChatCompleter, opts ...Option) (*ChatBatcher, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	b, err := newBase("chat-batcher", opts)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(b.concurrency())
	if err != nil {
		return nil, err
	}

	return &ChatBatcher{
		base:      b,
		completer: completer,
		pool:      pool,
	}, nil
}

// Release stops the worker pool. The batcher should not be used after calling Release.
func (c *ChatBatcher) Release() {
	c.pool.Release()
}

// Chat sends every prompt and returns one result per prompt, in input order.
//
// Prompts are dispatched BatchSize at a time. After a full batch that is
// followed by another, the batcher sleeps SleepInterval. Each request is
// retried per the retry policy; for json_object a response that does not
// decode is retried too.
//
// Without ContinueOnError the first failed prompt cancels the remaining
// work and is returned as an *ItemError.
func (c *ChatBatcher) Chat(ctx context.Context, prompts []string, params ChatParams) ([]ChatResult, error) {
	return c.ChatAsync(ctx, prompts, params).Wait(ctx)
}

// ChatAsync starts Chat in the background.
func (c *ChatBatcher) ChatAsync(ctx context.Context, prompts []string, params ChatParams) *Future[[]ChatResult] {
	return Go(ctx, func(ctx context.Context) ([]ChatResult, error) {
		return c.chat(ctx, prompts, params)
	})
}

// ChatOne sends a single prompt.
func (c *ChatBatcher) ChatOne(ctx context.Context, prompt string, params ChatParams) (ChatResult, error) {
	results, err := c.Chat(ctx, []string{prompt}, params)
	if err != nil {
		return ChatResult{}, err
	}
	if results[0].Err != nil {
		return results[0], results[0].Err
	}
	return results[0], nil
}

func (c *ChatBatcher) chat(ctx context.Context, prompts []string, params ChatParams) ([]ChatResult, error) {
	if err := core.ValidateChatRequest(params.request("")); err != nil {
		return nil, err
	}
	results := make([]ChatResult, len(prompts))
	if len(prompts) == 0 {
		return results, nil
	}

	start := time.Now()
	defer c.metrics.observeBatch(kindChat, start)

	batches, err := Chunk(prompts, c.config.BatchSize)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	progress := c.newProgress(len(prompts))
	defer progress.Finish()

	var (
		firstErr error
		errOnce  sync.Once
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel(err)
		})
	}

	offset := 0
	for n, chunk := range batches {
		c.logf(ctx, "dispatching chat batch", "batch", n+1, "batches", len(batches), "size", len(chunk))

		var wg sync.WaitGroup
		for i, prompt := range chunk {
			index := offset + i
			wg.Add(1)
			submitErr := c.pool.Submit(func() {
				defer wg.Done()
				defer progress.Increment(1)

				result, err := c.chatItem(ctx, index, params.request(prompt))
				if err != nil {
					if !c.config.ContinueOnError {
						fail(&ItemError{Index: index, Err: err})
						return
					}
					result = ChatResult{Index: index, Err: err}
				}
				results[index] = result
			})
			if submitErr != nil {
				wg.Done()
				fail(submitErr)
				break
			}
		}
		wg.Wait()

		if firstErr != nil {
			return nil, firstErr
		}
		if err := ctx.Err(); err != nil {
			return nil, context.Cause(ctx)
		}

		offset += len(chunk)
		if len(chunk) == c.config.BatchSize && n < len(batches)-1 {
			if err := c.pause(ctx, n+1, len(batches)); err != nil {
				return nil, err
			}
		}
	}

	return results, nil
}

// chatItem answers one prompt from the cache or the provider.
func (c *ChatBatcher) chatItem(ctx context.Context, index int, req ai.ChatRequest) (ChatResult, error) {
	if err := ctx.Err(); err != nil {
		return ChatResult{}, context.Cause(ctx)
	}

	key := core.ChatKey(req)
	if result, ok := c.cachedCompletion(ctx, key, index, req.Format); ok {
		return result, nil
	}

	result, err := RetryWithBackoff(ctx, c.config.Retry, func() (ChatResult, error) {
		if err := c.waitTurn(ctx); err != nil {
			return ChatResult{}, Permanent(err)
		}
		return c.complete(ctx, index, req)
	}, func(err error, wait time.Duration) {
		c.metrics.observeRetry(kindChat)
		c.logger.Warn("chat request failed, retrying", "index", index, "wait", wait, "err", err)
	})
	c.metrics.observeRequest(kindChat, err)
	if err != nil {
		return ChatResult{}, err
	}

	if c.cache != nil {
		entry := &core.CachedCompletion{Content: result.Content, Model: req.Model}
		if err := c.cache.PutCompletion(ctx, key, entry, c.cacheTTL); err != nil {
			c.logger.Warn("failed to cache completion", "index", index, "err", err)
		}
	}
	return result, nil
}

// complete is the retried unit: one request plus, for json_object, decoding.
func (c *ChatBatcher) complete(ctx context.Context, index int, req ai.ChatRequest) (ChatResult, error) {
	response, err := c.completer.Complete(ctx, req)
	if err != nil {
		return ChatResult{}, err
	}

	result := ChatResult{
		Index:    index,
		Content:  response.Content(),
		Response: response,
	}
	if req.Format == ai.FormatJSONObject {
		result.JSON, err = decodeJSONObject(result.Content)
		if err != nil {
			c.logger.Debug("error parsing JSON response", "index", index, "response", result.Content, "err", err)
			return ChatResult{}, err
		}
	}
	return result, nil
}

func (c *ChatBatcher) cachedCompletion(ctx context.Context, key core.ID, index int, format ai.ResponseFormat) (ChatResult, bool) {
	if c.cache == nil {
		return ChatResult{}, false
	}

	entry, err := c.cache.GetCompletion(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("cache lookup failed", "index", index, "err", err)
		}
		return ChatResult{}, false
	}

	result := ChatResult{Index: index, Content: entry.Content, Cached: true}
	if format == ai.FormatJSONObject {
		result.JSON, err = decodeJSONObject(entry.Content)
		if err != nil {
			return ChatResult{}, false
		}
	}
	c.metrics.observeCacheHits(kindChat, 1)
	return result, true
}
