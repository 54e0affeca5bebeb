package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/mediacat"
	"github.com/fwojciec/mediacat/crawl"
	"github.com/fwojciec/mediacat/etree"
	"github.com/fwojciec/mediacat/fs"
	"github.com/fwojciec/mediacat/goquery"
	cathttp "github.com/fwojciec/mediacat/http"
	"github.com/fwojciec/mediacat/prometheus"
	"github.com/fwojciec/mediacat/redis"
	"github.com/fwojciec/mediacat/rod"
	catslog "github.com/fwojciec/mediacat/slog"
	"github.com/fwojciec/mediacat/yaml"
)

// defaultRPS is the per-domain request rate used for live crawls.
const defaultRPS = 2.0

// urlWidth is the width progress lines shorten page URLs to.
const urlWidth = 60

// crawlPlan is the resolved input of a crawl: configuration file values
// overridden by flags.
type crawlPlan struct {
	Schema              *mediacat.LayoutSchema
	Sources             []mediacat.CategorySource
	Concurrency         int
	CategoryConcurrency int
	MaxPages            int
	RPS                 float64
}

func (c *CrawlCmd) plan(registry *mediacat.SchemaRegistry) (*crawlPlan, error) {
	if registry == nil {
		registry = mediacat.NewSchemaRegistry()
	}
	p := &crawlPlan{RPS: defaultRPS}

	var schemaName string
	if c.Config != "" {
		cfg, err := yaml.Load(c.Config)
		if err != nil {
			return nil, err
		}
		if err := cfg.Register(registry); err != nil {
			return nil, err
		}
		schemaName = cfg.Schema
		p.Sources = append(p.Sources, cfg.Categories...)
		p.Concurrency = cfg.Concurrency
		p.CategoryConcurrency = cfg.CategoryConcurrency
		p.MaxPages = cfg.MaxPages
		if cfg.RequestsPerSecond > 0 {
			p.RPS = cfg.RequestsPerSecond
		}
	}

	for _, raw := range c.Category {
		name, rawURL, ok := strings.Cut(raw, "=")
		if !ok || name == "" || rawURL == "" {
			return nil, mediacat.Errorf(mediacat.EINVALID, "category %q must be NAME=URL", raw)
		}
		p.Sources = append(p.Sources, mediacat.CategorySource{Name: name, URL: rawURL})
	}
	if len(p.Sources) == 0 {
		return nil, mediacat.Errorf(mediacat.EINVALID, "no categories to crawl: use --config or --category NAME=URL")
	}

	if c.Schema != "" {
		schemaName = c.Schema
	}
	if schemaName == "" {
		schemaName = mediacat.ListItemSchema.Name
	}
	schema, err := registry.Lookup(schemaName)
	if err != nil {
		return nil, err
	}
	p.Schema = schema

	if c.Concurrency > 0 {
		p.Concurrency = c.Concurrency
	}
	if c.MaxPages > 0 {
		p.MaxPages = c.MaxPages
	}
	if c.RPS > 0 {
		p.RPS = c.RPS
	}
	return p, nil
}

// wireCrawl builds the fetch pipeline and catalog writers for c.
// The returned cleanup releases everything that was opened.
func wireCrawl(ctx context.Context, c *CrawlCmd, deps *Dependencies) (func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	p, err := c.plan(deps.Schemas)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mediacat.ErrorMessage(err))
		return nil, err
	}

	var fetcher mediacat.Fetcher
	switch {
	case c.Fixtures != "":
		fetcher = fs.NewFixtureFetcher(c.Fixtures)
	case c.Browser:
		f, err := rod.NewFetcher(
			rod.WithFetchTimeout(c.Timeout),
			rod.WithWaitSelector(p.Schema.Entry.Selector),
		)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	default:
		fetcher = cathttp.NewFetcher(
			cathttp.WithTimeout(c.Timeout),
			cathttp.WithLimiter(crawl.NewDomainLimiter(p.RPS, 1)),
		)
	}
	if c.Record != "" {
		deps.Recorder = fs.NewRecorder(fetcher, filepath.Dir(c.Record), filepath.Base(c.Record))
		fetcher = deps.Recorder
	}
	fetcher = catslog.NewLoggingFetcher(fetcher, deps.Logger)
	closers = append(closers, fetcher.Close)

	loader := &crawl.Loader{
		Fetcher: fetcher,
		Parser:  goquery.NewParser(),
		Timeout: c.Timeout,
		Logger:  deps.Logger,
	}
	if c.NoRetry {
		loader.RetryDelays = []time.Duration{}
	}
	var source mediacat.DocumentSource = catslog.NewLoggingSource(loader, deps.Logger)

	if c.MetricsAddr != "" {
		deps.Metrics = prometheus.NewMetrics()
		source = prometheus.NewMetricsSource(source, deps.Metrics)

		ln, err := net.Listen("tcp", c.MetricsAddr)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to listen on %s: %w", c.MetricsAddr, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", deps.Metrics.Handler())
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				deps.Logger.Error("metrics server", "addr", c.MetricsAddr, "err", err)
			}
		}()
		closers = append(closers, srv.Close)
	}
	deps.Source = source

	if c.Out != "" {
		w, err := newFileWriter(c.Out, c.Format)
		if err != nil {
			cleanup()
			return nil, err
		}
		deps.Writers = append(deps.Writers, w)
	}
	if c.Publish != "" {
		client, err := redis.NewClient(ctx, c.Publish)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, client.Close)
		deps.Writers = append(deps.Writers, redis.NewPublisher(client))
	}

	return cleanup, nil
}

// newFileWriter returns the catalog writer for path. The auto format picks
// XML for a .xml extension and JSON otherwise.
func newFileWriter(path, format string) (mediacat.CatalogWriter, error) {
	if format == "" || format == "auto" {
		format = "json"
		if strings.EqualFold(filepath.Ext(path), ".xml") {
			format = "xml"
		}
	}
	switch format {
	case "json":
		return fs.NewJSONWriter(path), nil
	case "xml":
		return etree.NewXMLWriter(path), nil
	default:
		return nil, mediacat.Errorf(mediacat.EINVALID, "unknown export format %q", format)
	}
}

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	p, err := c.plan(deps.Schemas)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mediacat.ErrorMessage(err))
		return err
	}
	if deps.Source == nil {
		return mediacat.Errorf(mediacat.EINTERNAL, "crawl pipeline not configured")
	}

	crawler := &crawl.Crawler{
		Source:              deps.Source,
		Schema:              p.Schema,
		Concurrency:         p.Concurrency,
		CategoryConcurrency: p.CategoryConcurrency,
		MaxPages:            p.MaxPages,
		Logger:              deps.Logger,
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressFailed, crawl.ProgressFinished:
			fmt.Fprintln(deps.Stderr, crawl.FormatEvent(event, urlWidth))
		default:
			if deps.Verbose {
				fmt.Fprintln(deps.Stderr, crawl.FormatEvent(event, urlWidth))
			}
		}
	}

	catalog, err := crawler.BuildCatalog(deps.Ctx, p.Sources, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mediacat.ErrorMessage(err))
		return err
	}
	canceled := deps.Ctx.Err() != nil

	// Persist even when interrupted: a partial catalog is marked as such.
	ctx := context.WithoutCancel(deps.Ctx)

	if deps.Metrics != nil {
		deps.Metrics.ObserveCatalog(catalog)
	}

	if deps.Recorder != nil {
		if canceled {
			if err := deps.Recorder.Abort(); err != nil {
				return err
			}
		} else {
			if err := deps.Recorder.Commit(); err != nil {
				fmt.Fprintf(deps.Stderr, "error: recording fixtures: %v\n", err)
				return err
			}
			fmt.Fprintf(deps.Stdout, "Recorded fixtures to %s\n", deps.Recorder.Dir())
		}
	}

	if !c.NoSave {
		if err := deps.Catalogs.SaveCatalog(ctx, catalog); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", mediacat.ErrorMessage(err))
			return err
		}
	}

	for _, w := range deps.Writers {
		if err := w.WriteCatalog(ctx, catalog); err != nil {
			fmt.Fprintf(deps.Stderr, "error: exporting catalog: %v\n", err)
			return err
		}
	}

	failed := 0
	for _, f := range catalog.Failures() {
		failed += len(f)
	}
	if catalog.ID != "" {
		fmt.Fprintf(deps.Stdout, "Saved snapshot %s: ", catalog.ID)
	} else {
		fmt.Fprint(deps.Stdout, "Crawled ")
	}
	fmt.Fprintf(deps.Stdout, "%d categories, %d items, %d failed pages\n",
		len(catalog.Categories), catalog.Len(), failed)
	if canceled {
		fmt.Fprintln(deps.Stderr, "Crawl interrupted: catalog is partial")
	} else {
		for _, cat := range catalog.Categories {
			if cat.Partial {
				fmt.Fprintf(deps.Stderr, "Page limit reached in %s: category is partial\n", cat.Name)
			}
		}
	}
	return nil
}
