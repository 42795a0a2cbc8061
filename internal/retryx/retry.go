// Package retryx runs store calls with a per-attempt deadline and a bounded
// exponential retry on transient I/O failures.
package retryx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/sethvargo/go-retry"
)

const defaultBase = 100 * time.Millisecond

// Policy bounds a retried call. Retries is the number of extra attempts
// after the first one; zero disables retrying.
type Policy struct {
	Retries uint64
	Base    time.Duration
	Timeout time.Duration
}

// Do calls fn until it succeeds, fails with a non-transient error, or the
// policy is exhausted. Only errors matching common.ErrTransientIO are
// retried. An attempt that runs past Timeout is reported as transient.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	base := p.Base
	if base <= 0 {
		base = defaultBase
	}
	backoff := retry.WithMaxRetries(p.Retries, retry.NewExponential(base))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := attempt(ctx, p.Timeout, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, common.ErrTransientIO) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func attempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := fn(attemptCtx)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, common.ErrTransientIO) {
		return fmt.Errorf("%w: %w", common.ErrTransientIO, err)
	}
	return err
}
