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


// Package llmbatch batches chat and embedding calls to OpenAI-compatible APIs.
//
// A Client wires a provider, an optional on-disk result cache and the
// batchers from package batch:
//
//	client, err := llmbatch.New(
//	    llmbatch.WithAIConfig(ai.NewConfig(ai.WithChatModel("gpt-4o-mini"))),
//	    llmbatch.WithCacheDir("/var/cache/llmbatch"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	results, err := client.Chat(ctx, prompts, batch.DefaultChatParams())
package llmbatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/llmbatch/ai"
	"github.com/poiesic/llmbatch/ai/openai"
	"github.com/poiesic/llmbatch/batch"
	"github.com/poiesic/llmbatch/storage"
	"github.com/poiesic/llmbatch/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
)

// gcDiscardRatio is the value log rewrite threshold used on Close.
const gcDiscardRatio = 0.5

// Client owns a provider, the optional result cache and the chat and
// embedding batchers built on them. Close releases all of them.
type Client struct {
	provider ai.Provider
	backend  *badger.Backend
	cache    storage.ResultCache
	chat     *batch.ChatBatcher
	embed    *batch.EmbedBatcher
	model    string
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	aiConfig    *ai.Config
	provider    ai.Provider
	batchConfig batch.Config
	cacheDir    string
	cacheTTL    time.Duration
	registerer  prometheus.Registerer
	progress    io.Writer
	logger      *slog.Logger
}

// WithAIConfig sets the provider configuration. Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) Option {
	return func(o *clientOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses an existing provider instead of building an OpenAI one.
// The client takes ownership and closes it.
func WithProvider(provider ai.Provider) Option {
	return func(o *clientOptions) {
		o.provider = provider
	}
}

// WithBatchConfig sets batching, retry and pacing behavior.
func WithBatchConfig(config batch.Config) Option {
	return func(o *clientOptions) {
		o.batchConfig = config
	}
}

// WithCacheDir enables the result cache stored at dir.
func WithCacheDir(dir string) Option {
	return func(o *clientOptions) {
		o.cacheDir = dir
	}
}

// WithCacheTTL sets how long cached results live. Zero keeps them forever.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *clientOptions) {
		o.cacheTTL = ttl
	}
}

// WithMetrics registers batch metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *clientOptions) {
		o.registerer = reg
	}
}

// WithProgress reports progress of each call to w.
func WithProgress(w io.Writer) Option {
	return func(o *clientOptions) {
		o.progress = w
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// New creates a Client.
func New(opts ...Option) (*Client, error) {
	options := &clientOptions{
		aiConfig:    ai.DefaultConfig(),
		batchConfig: batch.DefaultConfig(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.aiConfig == nil {
		options.aiConfig = ai.DefaultConfig()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	c := &Client{
		provider: options.provider,
		model:    options.aiConfig.ChatModel,
		logger:   options.logger.With("component", "llmbatch"),
	}

	if c.provider == nil {
		provider, err := openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
		c.provider = provider
	}

	batchOpts := []batch.Option{
		batch.WithConfig(options.batchConfig),
		batch.WithLogger(options.logger),
		batch.WithEmbeddingModel(options.aiConfig.EmbeddingModel),
	}

	if options.cacheDir != "" {
		backend, err := badger.OpenBackend(options.cacheDir, false)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.backend = backend
		cache, err := badger.NewResultCache(backend)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.cache = cache
		batchOpts = append(batchOpts, batch.WithCache(cache, options.cacheTTL))
	}

	if options.registerer != nil {
		metrics, err := batch.NewMetrics(options.registerer)
		if err != nil {
			c.Close()
			return nil, err
		}
		batchOpts = append(batchOpts, batch.WithMetrics(metrics))
	}

	if options.progress != nil {
		batchOpts = append(batchOpts, batch.WithProgress(options.progress, progressInterval(options.batchConfig)))
	}

	chat, err := batch.NewChatBatcher(c.provider.Chat(), batchOpts...)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.chat = chat

	embed, err := batch.NewEmbedBatcher(c.provider.Embedder(), batchOpts...)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.embed = embed

	return c, nil
}

func progressInterval(config batch.Config) int {
	return max(1, config.BatchSize/10)
}

// Chat sends one chat request per prompt. An empty params.Model uses the
// configured chat model.
func (c *Client) Chat(ctx context.Context, prompts []string, params batch.ChatParams) ([]batch.ChatResult, error) {
	if params.Model == "" {
		params.Model = c.model
	}
	return c.chat.Chat(ctx, prompts, params)
}

// Embed returns one vector per input, in input order.
func (c *Client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return c.embed.Embed(ctx, inputs)
}

// Provider returns the underlying provider.
func (c *Client) Provider() ai.Provider {
	return c.provider
}

// Close releases the worker pool, the cache and the provider.
func (c *Client) Close() error {
	var errs []error

	if c.chat != nil {
		c.chat.Release()
	}

	if c.provider != nil {
		if err := c.provider.Close(); err != nil {
			c.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}

	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			c.logger.Error("error closing result cache", "err", err)
			errs = append(errs, err)
		}
	}

	if c.backend != nil {
		if err := c.backend.RunGC(gcDiscardRatio); err != nil {
			c.logger.Warn("cache garbage collection failed", "err", err)
		}
		if err := c.backend.Close(); err != nil {
			c.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
