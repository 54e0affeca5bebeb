// Package crawl builds catalogs by walking listing pages.
// It coordinates a bounded pool of fetch workers per category, follows
// pagination and "view more" pointers to closure, and assembles the
// resulting categories into a catalog snapshot.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/mediacat"
)

// Frontier configuration.
const (
	// frontierExpectedURLs is the expected number of listing pages per
	// category for Bloom filter sizing.
	frontierExpectedURLs = 1000
	// frontierFalsePositiveRate is the Bloom filter false positive rate.
	frontierFalsePositiveRate = 0.01
	// DefaultConcurrency is the number of fetch workers per category.
	DefaultConcurrency = 4
)

// Crawler builds catalogs by walking listing pages.
type Crawler struct {
	Source mediacat.DocumentSource
	Schema *mediacat.LayoutSchema

	// Concurrency bounds the fetch workers within one category.
	// Defaults to DefaultConcurrency.
	Concurrency int

	// CategoryConcurrency bounds how many categories are crawled at once
	// by BuildCatalog. Defaults to the number of categories.
	CategoryConcurrency int

	// MaxPages limits the listing pages fetched per category.
	// Zero means no limit.
	MaxPages int

	// Logger receives rejected entries and failed pages. May be nil.
	Logger *slog.Logger

	// Now returns the snapshot time. Defaults to time.Now.
	Now func() time.Time
}

// Result holds the outcome of crawling one category.
type Result struct {
	Category *mediacat.Category

	// Visited lists the listing pages fetched, in dispatch order.
	Visited []string

	// Canceled reports that the crawl stopped before the frontier was
	// exhausted. Category is still valid but partial.
	Canceled bool

	// Truncated reports that MaxPages stopped the crawl with listing pages
	// still queued. Category is marked partial.
	Truncated bool

	// FilterFalsePositives counts discovered URLs the visited filter
	// wrongly reported as seen. A high count means the filter is
	// undersized for the category.
	FilterFalsePositives int
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type     ProgressType
	Category string
	URL      string
	Items    int // items resolved so far in the category
	Visited  int // pages fetched so far in the category
	Queued   int // pages waiting in the frontier
	Error    error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// pageResult holds the outcome of processing a single listing page.
type pageResult struct {
	url        string
	pagination []string
	entries    []mediacat.Entry
	rejected   []mediacat.Rejection
	err        error
}

// Crawl walks the listing pages reachable from rootURL and returns the
// items found under name.
//
// Pages that cannot be loaded are recorded in Category.Failed and entries
// that cannot be extracted in Category.Rejected; neither stops the crawl.
// Only an invalid schema or root URL is returned as an error. When ctx is
// canceled no further pages are dispatched, loads already in flight see the
// canceled context (a Loader finishes its current attempt and stops
// retrying), and the partial result is returned with Canceled set.
func (c *Crawler) Crawl(ctx context.Context, name, rootURL string, progress ProgressFunc) (*Result, error) {
	if err := c.Schema.Validate(); err != nil {
		return nil, err
	}
	if err := validateRootURL(rootURL); err != nil {
		return nil, err
	}
	return c.crawl(ctx, name, rootURL, progress), nil
}

// crawl runs the coordinator loop. The coordinator is the only goroutine
// that touches the frontier and the category; workers only load and
// classify pages.
func (c *Crawler) crawl(ctx context.Context, name, rootURL string, progress ProgressFunc) *Result {
	result := &Result{Category: mediacat.NewCategory(name, rootURL)}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(rootURL)

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	emit := func(event ProgressEvent) {
		if progress == nil {
			return
		}
		event.Category = name
		event.Items = result.Category.Len()
		event.Visited = len(result.Visited)
		event.Queued = frontier.Len()
		progress(event)
	}
	emit(ProgressEvent{Type: ProgressStarted, URL: rootURL})

	workCh := make(chan string)
	resultCh := make(chan pageResult)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pageURL := range workCh {
				resultCh <- c.processPage(ctx, pageURL)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var sequence int
	handle := func(res pageResult, follow bool) {
		c.handleResult(res, result.Category, frontier, follow, &sequence)
		if res.err != nil {
			emit(ProgressEvent{Type: ProgressFailed, URL: res.url, Error: res.err})
			return
		}
		emit(ProgressEvent{Type: ProgressCompleted, URL: res.url})
	}

	pending := 0
	var next string
	hasNext := false
	limitReached := func() bool {
		return c.MaxPages > 0 && len(result.Visited) >= c.MaxPages
	}

coordinatorLoop:
	for {
		if ctx.Err() != nil {
			result.Canceled = true
			break coordinatorLoop
		}
		if !hasNext && !limitReached() {
			next, hasNext = frontier.Pop()
		}
		if (!hasNext || limitReached()) && pending == 0 {
			break coordinatorLoop
		}

		if hasNext && !limitReached() {
			select {
			case <-ctx.Done():
				result.Canceled = true
				break coordinatorLoop
			case workCh <- next:
				result.Visited = append(result.Visited, next)
				pending++
				hasNext = false
			case res := <-resultCh:
				pending--
				handle(res, true)
			}
		} else {
			select {
			case <-ctx.Done():
				result.Canceled = true
				break coordinatorLoop
			case res := <-resultCh:
				pending--
				handle(res, true)
			}
		}
	}

	close(workCh)

	// Pages already dispatched still contribute what they found, but
	// nothing new is followed.
	for res := range resultCh {
		handle(res, false)
	}

	result.Truncated = !result.Canceled && (hasNext || frontier.Len() > 0)
	result.Category.Partial = result.Canceled || result.Truncated
	result.FilterFalsePositives = frontier.FalsePositives()

	c.log().Debug("category crawled",
		"category", name,
		"pages", len(result.Visited),
		"items", result.Category.Len(),
		"failed", len(result.Category.Failed),
		"partial", result.Category.Partial,
		"filter_false_positives", result.FilterFalsePositives)

	emit(ProgressEvent{Type: ProgressFinished, URL: rootURL})
	return result
}

// processPage loads and classifies a single listing page.
func (c *Crawler) processPage(ctx context.Context, pageURL string) pageResult {
	res := pageResult{url: pageURL}

	doc, err := c.Source.Load(ctx, pageURL)
	if err != nil {
		res.err = err
		return res
	}

	page, err := mediacat.NewListingPage(doc, c.Schema)
	if err != nil {
		res.err = &mediacat.FetchError{URL: pageURL, Err: err}
		return res
	}

	res.pagination = page.PaginationLinks()
	for _, node := range page.Entries() {
		entry, err := page.Classify(node)
		if err != nil {
			field := "unknown"
			var extractErr *mediacat.ExtractionError
			if errors.As(err, &extractErr) {
				field = extractErr.Field
			}
			res.rejected = append(res.rejected, mediacat.Rejection{URL: pageURL, Field: field})
			continue
		}
		res.entries = append(res.entries, entry)
	}
	return res
}

// handleResult merges one page into the category. Pagination links are
// queued before pointers, both in document order. Items are numbered in
// discovery order before duplicates are dropped.
func (c *Crawler) handleResult(res pageResult, cat *mediacat.Category, frontier *Frontier, follow bool, sequence *int) {
	if res.err != nil {
		cat.Failed = append(cat.Failed, mediacat.FetchFailure{URL: res.url, Error: res.err.Error()})
		c.log().Warn("listing page failed", "category", cat.Name, "url", res.url, "err", res.err)
		return
	}

	if follow {
		for _, link := range res.pagination {
			frontier.Push(link)
		}
	}
	for _, entry := range res.entries {
		if entry.IsPointer() {
			if follow {
				frontier.Push(entry.Pointer.TargetURL)
			}
			continue
		}
		entry.Item.SequenceIndex = *sequence
		*sequence++
		cat.Add(entry.Item)
	}

	for _, r := range res.rejected {
		c.log().Debug("entry rejected", "category", cat.Name, "url", r.URL, "field", r.Field)
	}
	cat.Rejected = append(cat.Rejected, res.rejected...)
}

func (c *Crawler) log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func validateRootURL(rootURL string) error {
	u, err := url.Parse(rootURL)
	if err != nil {
		return mediacat.Errorf(mediacat.EINVALID, "invalid root URL %q: %v", rootURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return mediacat.Errorf(mediacat.EINVALID, "root URL %q must be absolute", rootURL)
	}
	return nil
}

// String implements fmt.Stringer for log output.
func (t ProgressType) String() string {
	switch t {
	case ProgressStarted:
		return "started"
	case ProgressCompleted:
		return "completed"
	case ProgressFailed:
		return "failed"
	case ProgressFinished:
		return "finished"
	}
	return fmt.Sprintf("ProgressType(%d)", int(t))
}
