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
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy controls how a single request is retried.
//
// The wait before retry n (1-based) is drawn uniformly from
// [MinWait, clamp(Multiplier*2^(n-1), MinWait, MaxWait)].
type RetryPolicy struct {
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
	Multiplier  time.Duration

	// MaxElapsed stops retrying once this much time has passed since the
	// first attempt. Zero means no limit.
	MaxElapsed time.Duration
}

// DefaultRetryPolicy returns 11 attempts with random exponential waits
// between 10 and 80 seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 11,
		MinWait:     10 * time.Second,
		MaxWait:     80 * time.Second,
		Multiplier:  time.Second,
	}
}

// Validate checks the policy for invalid values.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if p.MinWait < 0 || p.MaxWait < 0 || p.Multiplier < 0 || p.MaxElapsed < 0 {
		return fmt.Errorf("%w: retry waits must not be negative", ErrInvalidWait)
	}
	if p.MaxWait < p.MinWait {
		return fmt.Errorf("%w: max wait %s is below min wait %s", ErrInvalidWait, p.MaxWait, p.MinWait)
	}
	return nil
}

// randomExponential implements backoff.BackOff with full jitter above a floor.
type randomExponential struct {
	policy  RetryPolicy
	attempt int
}

var _ backoff.BackOff = (*randomExponential)(nil)

func (r *randomExponential) NextBackOff() time.Duration {
	r.attempt++

	high := r.policy.Multiplier
	for i := 1; i < r.attempt && high < r.policy.MaxWait; i++ {
		high *= 2
	}
	high = min(max(high, r.policy.MinWait), r.policy.MaxWait)

	spread := high - r.policy.MinWait
	if spread <= 0 {
		return r.policy.MinWait
	}
	return r.policy.MinWait + rand.N(spread+1)
}

func (r *randomExponential) Reset() {
	r.attempt = 0
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// RetryWithBackoff runs operation until it succeeds, returns a Permanent
// error, the policy is exhausted, or ctx is done.
// onRetry, if non-nil, is called before each wait.
// Returns the error from the last attempt if all attempts fail.
func RetryWithBackoff[T any](ctx context.Context, policy RetryPolicy, operation func() (T, error), onRetry func(err error, wait time.Duration)) (T, error) {
	if err := policy.Validate(); err != nil {
		var zero T
		return zero, err
	}

	attempt := 0
	op := func() (T, error) {
		attempt++
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, backoff.Permanent(err)
		}
		result, err := operation()
		if err == nil && attempt > 1 {
			slog.Debug("operation succeeded after retry", "attempt", attempt)
		}
		return result, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(&randomExponential{policy: policy}),
		backoff.WithMaxTries(uint(policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(policy.MaxElapsed),
		backoff.WithNotify(func(err error, wait time.Duration) {
			slog.Debug("operation failed, will retry",
				"attempt", attempt, "maxAttempts", policy.MaxAttempts, "wait", wait, "error", err)
			if onRetry != nil {
				onRetry(err, wait)
			}
		}),
	}

	return backoff.Retry(ctx, op, opts...)
}
