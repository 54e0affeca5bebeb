package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/mediacat"
	"golang.org/x/sync/errgroup"
)

// BuildCatalog crawls every source and assembles the categories, in the
// order given, into a catalog stamped with the current time.
//
// The schema and every source are validated before any page is fetched.
// Categories are crawled independently: failures in one never affect
// another. Progress events from concurrent categories are serialized.
func (c *Crawler) BuildCatalog(ctx context.Context, sources []mediacat.CategorySource, progress ProgressFunc) (*mediacat.Catalog, error) {
	if err := c.Schema.Validate(); err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(sources))
	for i := range sources {
		if err := sources[i].Validate(); err != nil {
			return nil, err
		}
		if names[sources[i].Name] {
			return nil, mediacat.Errorf(mediacat.EINVALID, "duplicate category %q", sources[i].Name)
		}
		names[sources[i].Name] = true
		if err := validateRootURL(sources[i].URL); err != nil {
			return nil, err
		}
	}

	if progress != nil {
		var mu sync.Mutex
		unsafe := progress
		progress = func(event ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			unsafe(event)
		}
	}

	limit := c.CategoryConcurrency
	if limit <= 0 {
		limit = len(sources)
	}

	categories := make([]*mediacat.Category, len(sources))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, src := range sources {
		g.Go(func() error {
			if ctx.Err() != nil {
				cat := mediacat.NewCategory(src.Name, src.URL)
				cat.Partial = true
				categories[i] = cat
				return nil
			}
			categories[i] = c.crawl(ctx, src.Name, src.URL, progress).Category
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mediacat.NewCatalog(c.Schema.Name, categories, c.now()), nil
}

func (c *Crawler) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now()
}
