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


package mock

import "github.com/poiesic/llmbatch/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock chat and embedding clients.
type MockProvider struct {
	chat     *MockChatCompleter
	embedder *MockEmbedder
	closed   bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider for consistency with production constructors.
// Use GetMockChat()/GetMockEmbedder() to access concrete types for test assertions.
func NewMockProvider() ai.Provider {
	return NewMockProviderWithServices(NewMockChatCompleter(), NewMockEmbedder())
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(chat *MockChatCompleter, embedder *MockEmbedder) *MockProvider {
	return &MockProvider{
		chat:     chat,
		embedder: embedder,
	}
}

// Chat returns the mock chat client.
func (p *MockProvider) Chat() ai.ChatCompleter {
	return p.chat
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockChat returns the underlying mock chat client for test assertions.
func (p *MockProvider) GetMockChat() *MockChatCompleter {
	return p.chat
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}
