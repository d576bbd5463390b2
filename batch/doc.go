// Package batch turns lists of prompts or texts into lists of results.
//
// A ChatBatcher sends one chat request per prompt and an EmbedBatcher sends
// one embedding request per chunk of inputs. Both bound in-flight requests,
// retry transient failures with random exponential backoff, and can pace
// requests with a fixed rate limit. The chat batcher additionally sleeps
// between full batches to stay under provider quotas.
//
// # Usage
//
//	chat, err := batch.NewChatBatcher(provider.Chat(),
//	    batch.WithConfig(batch.Config{BatchSize: 100, SleepInterval: time.Minute, Retry: batch.DefaultRetryPolicy()}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer chat.Release()
//
//	results, err := chat.Chat(ctx, prompts, batch.DefaultChatParams())
//
// Results are always returned in input order. Callers without a context can
// use RunSync, and callers that want to overlap work can use the Async
// variants, which return a Future.
package batch
