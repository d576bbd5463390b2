// Package mock provides test double implementations of the ai interfaces.
//
// The mocks let batch orchestration be tested without a live provider and
// make failure injection deterministic. All mocks are safe for concurrent use,
// since the batchers call them from many goroutines.
//
// # Usage in Tests
//
//	chat := mock.NewMockChatCompleter().
//	    WithCompleteFunc(func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
//	        return mock.TextResponse("ok"), nil
//	    })
//
//	count := chat.CallCount()
//
// # Default Behavior
//
//   - MockChatCompleter: echoes the prompt as the content
//   - MockEmbedder: returns deterministic unit vectors based on text hash
//   - MockProvider: aggregates the two
package mock
