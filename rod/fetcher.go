// Package rod provides a mediacat.Fetcher backed by a headless Chrome
// browser, for listing pages whose entries are rendered by JavaScript.
package rod

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fwojciec/mediacat"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page navigation.
const DefaultFetchTimeout = 10 * time.Second

// DefaultSelectorWait bounds the wait for listing entries after load.
const DefaultSelectorWait = 3 * time.Second

// Ensure Fetcher implements mediacat.Fetcher at compile time.
var _ mediacat.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	session      *session
	timeout      time.Duration
	waitSelector string
	selectorWait time.Duration
	recycleAfter int
	closed       atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout for one page load.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithWaitSelector makes Fetch wait until an element matching selector is
// present, typically the layout schema's entry selector. A page on which
// the selector does not appear within the selector wait is returned as is.
func WithWaitSelector(selector string) Option {
	return func(f *Fetcher) {
		f.waitSelector = selector
	}
}

// WithSelectorWait sets how long Fetch waits for the wait selector after
// the page has loaded. Defaults to DefaultSelectorWait.
func WithSelectorWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.selectorWait = d
	}
}

// WithRecycleAfter sets how many pages the browser renders before it is
// replaced. Defaults to DefaultRecycleAfter.
func WithRecycleAfter(n int) Option {
	return func(f *Fetcher) {
		f.recycleAfter = n
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		selectorWait: DefaultSelectorWait,
		recycleAfter: DefaultRecycleAfter,
	}
	for _, opt := range opts {
		opt(f)
	}

	s, err := newSession(f.recycleAfter, launchChrome)
	if err != nil {
		return nil, err
	}
	f.session = s
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", mediacat.Errorf(mediacat.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	gen, err := f.session.acquire()
	if err != nil {
		return "", err
	}
	defer f.session.release(gen)
	page, err := gen.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", wrapContextErr(ctx, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", wrapContextErr(ctx, err)
	}
	if f.waitSelector != "" {
		if err := f.waitForEntries(ctx, page); err != nil {
			return "", wrapContextErr(ctx, err)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", wrapContextErr(ctx, err)
	}
	return html, nil
}

// waitForEntries gives script-rendered entries up to selectorWait to
// appear. A page on which none appear in time, such as one holding only
// pagination, is not an error.
func (f *Fetcher) waitForEntries(ctx context.Context, page *rod.Page) error {
	waitCtx, cancel := context.WithTimeout(ctx, f.selectorWait)
	defer cancel()

	_, err := page.Context(waitCtx).Element(f.waitSelector)
	if err != nil && ctx.Err() == nil && waitCtx.Err() != nil {
		return nil
	}
	return err
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.session.close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.session.pid()
}

// wrapContextErr reports the context error when rod fails because the
// page context expired.
func wrapContextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
