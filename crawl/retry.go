package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/mediacat"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// retryFunc reports the attempt about to be retried and the error that
// caused it.
type retryFunc func(attempt int, err error)

// withRetry calls fn until it succeeds, the delays are exhausted or ctx is
// done. Errors coded EINVALID or ENOTFOUND are permanent and returned
// immediately. Once ctx is done no further attempt is made and the last
// attempt's error is returned; an attempt already running is not
// interrupted by ctx.
func withRetry(ctx context.Context, delays []time.Duration, fn func() error, onRetry retryFunc) error {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !retryable(err) || ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delays[attempt]):
		}

		if onRetry != nil {
			onRetry(attempt+2, err)
		}
	}

	return lastErr
}

func retryable(err error) bool {
	switch mediacat.ErrorCode(err) {
	case mediacat.EINVALID, mediacat.ENOTFOUND:
		return false
	}
	return true
}
