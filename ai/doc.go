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


// Package ai defines the single-call LLM operations that llmbatch fans out.
//
// The batch package never talks HTTP itself. It drives two small interfaces:
//
//   - ChatCompleter: one chat completion per call
//   - Embedder: one embedding request per call (a whole chunk of texts)
//
// A Provider bundles both around a shared API handle.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs through langchaingo
//   - ai/mock: test doubles for unit tests
//
// Public constructors in ai/openai return the interfaces. Mock constructors
// return concrete types so tests can inject behavior and read call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithChatModel("gpt-4o-mini"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	resp, err := provider.Chat().Complete(ctx, ai.ChatRequest{
//	    Model:  cfg.ChatModel,
//	    Prompt: "what is the capital of france",
//	})
package ai
