package batch

import (
	"context"
	"time"
)

// waitTurn blocks until the rate limiter admits one request.
func (b *base) waitTurn(ctx context.Context) error {
	if b.limiter == nil {
		return ctx.Err()
	}
	return b.limiter.Wait(ctx)
}

// pause sleeps for the configured interval between full batches.
func (b *base) pause(ctx context.Context, batch, total int) error {
	d := b.config.SleepInterval
	if d <= 0 {
		return nil
	}

	b.logf(ctx, "sleeping between batches", "batch", batch, "batches", total, "interval", d)
	b.metrics.observePacingSleep()
	return sleep(ctx, d)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
