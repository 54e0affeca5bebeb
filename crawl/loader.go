package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mediacat"
)

var _ mediacat.DocumentSource = (*Loader)(nil)

// DefaultFetchTimeout bounds a single fetch attempt.
const DefaultFetchTimeout = 30 * time.Second

// Loader loads listing documents by fetching and parsing them.
// Every fetch attempt carries a timeout and transient failures are retried,
// so the crawler itself never has to.
//
// Canceling the context passed to Load stops further attempts but lets the
// attempt in flight finish or hit its timeout.
type Loader struct {
	Fetcher mediacat.Fetcher
	Parser  mediacat.Parser

	// Timeout bounds each fetch attempt. Defaults to DefaultFetchTimeout.
	Timeout time.Duration

	// RetryDelays are the waits between attempts. Nil means
	// DefaultRetryDelays; an empty slice disables retries.
	RetryDelays []time.Duration

	// Logger receives retry notices. May be nil.
	Logger *slog.Logger
}

// Load fetches and parses the page at url.
// Every failure is returned as a *mediacat.FetchError.
func (l *Loader) Load(ctx context.Context, url string) (*mediacat.Document, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	delays := l.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	attemptCtx := context.WithoutCancel(ctx)

	var html string
	err := withRetry(ctx, delays, func() error {
		ctx, cancel := context.WithTimeout(attemptCtx, timeout)
		defer cancel()
		var err error
		html, err = l.Fetcher.Fetch(ctx, url)
		return err
	}, func(attempt int, err error) {
		if l.Logger != nil {
			l.Logger.Debug("retry", "url", url, "attempt", attempt, "err", err)
		}
	})
	if err != nil {
		return nil, &mediacat.FetchError{URL: url, Err: err}
	}

	doc, err := l.Parser.Parse(url, html)
	if err != nil {
		return nil, &mediacat.FetchError{URL: url, Err: err}
	}
	return doc, nil
}
