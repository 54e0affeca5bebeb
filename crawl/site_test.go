package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/mediacat"
	"github.com/fwojciec/mediacat/crawl"
	"github.com/fwojciec/mediacat/goquery"
	"github.com/fwojciec/mediacat/mock"
)

const origin = "http://www.bbc.co.uk"

// site is an in-memory listing site keyed by absolute URL.
type site struct {
	mu      sync.Mutex
	pages   map[string]string
	failing map[string]bool
	fetches map[string]int
}

func newSite() *site {
	return &site{
		pages:   make(map[string]string),
		failing: make(map[string]bool),
		fetches: make(map[string]int),
	}
}

func (s *site) add(path, html string) {
	s.pages[origin+path] = html
}

func (s *site) fail(path string) {
	s.failing[origin+path] = true
}

func (s *site) fetchCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[origin+path]
}

func (s *site) totalFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.fetches {
		n += c
	}
	return n
}

func (s *site) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			s.mu.Lock()
			s.fetches[url]++
			s.mu.Unlock()
			if s.failing[url] {
				return "", errors.New("connection reset by peer")
			}
			html, ok := s.pages[url]
			if !ok {
				return "", mediacat.Errorf(mediacat.ENOTFOUND, "404 Not Found")
			}
			return html, nil
		},
		CloseFn: func() error { return nil },
	}
}

// loader returns a Loader over the site that never retries.
func (s *site) loader() *crawl.Loader {
	return &crawl.Loader{
		Fetcher:     s.fetcher(),
		Parser:      goquery.NewParser(),
		RetryDelays: []time.Duration{},
	}
}

func itemEntry(id, title string) string {
	return fmt.Sprintf(`<li data-ip-id="%[1]s"><div class="content-item">
	<a href="/iplayer/episode/%[1]s">
		<div class="rs-image"><picture><source srcset="https://ichef.bbci.co.uk/images/ic/336x189/%[1]s.jpg 336w, https://ichef.bbci.co.uk/images/ic/672x378/%[1]s.jpg 672w"></picture></div>
		<div class="content-item__title">%[2]s</div>
		<div class="content-item__info-primary"><p class="content-item__description">Series 1: Episode 1</p></div>
		<div class="content-item__info__secondary"><p class="content-item__description">Synopsis of %[2]s.</p></div>
	</a>
</div></li>`, id, title)
}

func pointerEntry(path string) string {
	return fmt.Sprintf(`<li><div class="content-item">
	<a class="lnk" href="%s">View all episodes</a>
</div></li>`, path)
}

func brokenEntry(id string) string {
	return fmt.Sprintf(`<li data-ip-id="%s"><div class="content-item">
	<div class="content-item__title">No link or synopsis</div>
</div></li>`, id)
}

func listing(entries []string, pagination ...string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><body><ol>\n")
	for _, e := range entries {
		b.WriteString(e)
		b.WriteString("\n")
	}
	b.WriteString("</ol>\n<ul class=\"pagination\">\n")
	for _, p := range pagination {
		fmt.Fprintf(&b, "<li class=\"page\"><a href=\"%s\">page</a></li>\n", p)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

// seventeenEntrySite builds a root listing with 4 items and 13 pointers,
// each pointer leading to a page with one further item.
func seventeenEntrySite() *site {
	s := newSite()
	var entries []string
	for i := 1; i <= 4; i++ {
		entries = append(entries, itemEntry(fmt.Sprintf("root%02d", i), fmt.Sprintf("Root Programme %d", i)))
	}
	for i := 1; i <= 13; i++ {
		path := fmt.Sprintf("/iplayer/episodes/group%02d", i)
		entries = append(entries, pointerEntry(path))
		s.add(path, listing([]string{itemEntry(fmt.Sprintf("group%02d", i), fmt.Sprintf("Grouped Programme %d", i))}))
	}
	s.add("/iplayer/categories/food/all", listing(entries))
	return s
}
