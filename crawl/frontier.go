package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/mediacat/bloom"
)

// Frontier is the queue of listing pages still to fetch in one crawl.
// Pages are popped in the order they were discovered. A URL is marked seen
// when it is first pushed, so it is enqueued and fetched at most once.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Set
	queue []string
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for the seen filter.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewSet(n, fpRate),
	}
}

// Push adds a URL to the frontier.
// Returns false if the URL has already been seen.
// URLs differing only by fragment are considered the same page.
func (f *Frontier) Push(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := stripFragment(rawURL)
	if !f.seen.Add(u) {
		return false
	}
	f.queue = append(f.queue, u)
	return true
}

// Pop returns the oldest queued URL.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return u, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// FalsePositives returns how many pushes of a new URL the Bloom filter
// wrongly reported as seen before the exact check admitted them.
func (f *Frontier) FalsePositives() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.FalsePositives()
}

func stripFragment(rawURL string) string {
	if idx := strings.Index(rawURL, "#"); idx != -1 {
		return rawURL[:idx]
	}
	return rawURL
}
