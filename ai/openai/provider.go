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
	"errors"
	"log/slog"

	"github.com/poiesic/llmbatch/ai"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrMissingAPIKey is returned when neither the config nor the environment carries a key.
var ErrMissingAPIKey = errors.New("openai: API key is required (set " + ai.APIKeyEnv + " or pass one explicitly)")

// Provider implements ai.Provider on top of a single langchaingo OpenAI client.
// Chat and embedding calls share the client and its HTTP connection pool.
type Provider struct {
	config   *ai.Config
	client   *openai.LLM
	chat     *ChatCompleter
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider creates a new provider for an OpenAI-compatible API.
// The config is validated and normalized before use.
//
// Returns ai.Provider to keep callers off OpenAI-specific details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	p, err := newProvider(config)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newProvider(config *ai.Config) (*Provider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	client, err := newClient(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:   config,
		client:   client,
		chat:     newChatCompleter(client, config.ChatModel),
		embedder: newEmbedder(client, config.EmbeddingModel),
		logger:   slog.Default().With("component", "openai-provider"),
	}, nil
}

// newClient builds the shared langchaingo client.
func newClient(config *ai.Config) (*openai.LLM, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token := config.ResolveAPIKey()
	if token == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []openai.Option{
		openai.WithBaseURL(config.Host),
		openai.WithToken(token),
		openai.WithModel(config.ChatModel),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	}
	if config.Organization != "" {
		opts = append(opts, openai.WithOrganization(config.Organization))
	}

	return openai.New(opts...)
}

// NewChatCompleter creates a standalone chat client.
func NewChatCompleter(config *ai.Config) (ai.ChatCompleter, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	client, err := newClient(config)
	if err != nil {
		return nil, err
	}
	return newChatCompleter(client, config.ChatModel), nil
}

// NewEmbedder creates a standalone embedding client.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	client, err := newClient(config)
	if err != nil {
		return nil, err
	}
	return newEmbedder(client, config.EmbeddingModel), nil
}

// Chat returns the chat completion client.
func (p *Provider) Chat() ai.ChatCompleter {
	return p.chat
}

// Embedder returns the embedding client.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying client doesn't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
