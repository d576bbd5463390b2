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


// Package openai implements the ai interfaces against OpenAI-compatible APIs.
//
// It uses the langchaingo OpenAI client, so it also works with Ollama,
// LocalAI, vLLM and other servers exposing /v1/chat/completions and
// /v1/embeddings.
//
// # Usage
//
//	cfg := ai.NewConfig(ai.WithChatModel("gpt-4o-mini"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedTexts(ctx, []string{"sample text"})
//
// The API key comes from ai.Config.APIKey or, when empty, OPENAI_API_KEY.
package openai
