package provider

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// withRetry runs op up to maxRetries+1 times with exponential backoff. op
// reports whether a failure may be retried; a false stops immediately and
// its error is returned as is.
func withRetry(ctx context.Context, maxRetries int, op func() (retryable bool, err error)) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		retryable, err := op()
		if err == nil {
			return nil
		}
		if !retryable || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx),
		func(err error, wait time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("model call failed, retrying")
		})
}
