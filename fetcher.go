package mediacat

import "context"

// Fetcher retrieves raw HTML from URLs.
// Implementations include live HTTP, browser automation and local fixtures.
type Fetcher interface {
	// Fetch returns the HTML served at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DocumentSource turns a URL into a parsed Document.
// Failures are reported as *FetchError so the crawler can record the URL
// and continue. Once ctx is canceled a source must not start new fetches.
type DocumentSource interface {
	Load(ctx context.Context, url string) (*Document, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
