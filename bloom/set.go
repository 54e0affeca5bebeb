// Package bloom tracks visited URLs using a Bloom filter in front of an
// exact set.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Set records URLs already seen during a crawl.
//
// The Bloom filter answers most negative lookups, which are the common case
// while a crawl discovers new pages, without touching the exact set. A
// positive filter answer is confirmed against the exact set, so a false
// positive costs one map lookup and never causes a URL to be skipped.
// Set is not safe for concurrent use.
type Set struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}

	falsePositives int
}

// NewSet creates a Set sized for n expected URLs with the given Bloom
// filter false positive rate.
func NewSet(n uint, fpRate float64) *Set {
	return &Set{
		filter: bloom.NewWithEstimates(n, fpRate),
		exact:  make(map[string]struct{}, n),
	}
}

// Add records url. Returns false if it was already present.
func (s *Set) Add(url string) bool {
	if s.Has(url) {
		return false
	}
	s.filter.AddString(url)
	s.exact[url] = struct{}{}
	return true
}

// Has reports whether url has been recorded.
func (s *Set) Has(url string) bool {
	if !s.filter.TestString(url) {
		return false
	}
	if _, ok := s.exact[url]; ok {
		return true
	}
	s.falsePositives++
	return false
}

// Len returns the number of recorded URLs.
func (s *Set) Len() int {
	return len(s.exact)
}

// FalsePositives returns how many lookups the filter answered wrongly.
func (s *Set) FalsePositives() int {
	return s.falsePositives
}
