package batch

import (
	"context"
	"fmt"
)

// Future is the pending result of a function started with Go.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn in its own goroutine and returns a Future for its result.
// A panic in fn is recovered and reported as ErrTaskPanicked.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			}
		}()
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is ready or ctx is done, in which case it
// returns context.Cause(ctx). Giving up on ctx does not stop the underlying
// work; cancel the context passed to Go for that.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, context.Cause(ctx)
	}
}

// RunSync runs fn with a background context and blocks for its result.
// It lets synchronous callers use functions written against a context.
func RunSync[T any](fn func(context.Context) (T, error)) (T, error) {
	ctx := context.Background()
	return Go(ctx, fn).Wait(ctx)
}
