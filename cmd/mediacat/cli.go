package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/mediacat"
	"github.com/fwojciec/mediacat/fs"
	"github.com/fwojciec/mediacat/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Verbose  bool
	Catalogs mediacat.CatalogService
	Schemas  *mediacat.SchemaRegistry

	// Crawl pipeline, wired only for the crawl command.
	Source   mediacat.DocumentSource
	Writers  []mediacat.CatalogWriter
	Recorder *fs.Recorder
	Metrics  *prometheus.Metrics
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"MEDIACAT_DB" help:"Snapshot database path (default: ~/.mediacat/mediacat.db)"`
	Verbose bool   `short:"v" env:"MEDIACAT_VERBOSE" help:"Log every fetch and page load"`

	Crawl     CrawlCmd     `cmd:"" help:"Crawl categories and store a catalog snapshot"`
	Schemas   SchemasCmd   `cmd:"" help:"List layout schemas or show one"`
	Snapshots SnapshotsCmd `cmd:"" help:"List stored catalog snapshots"`
	Show      ShowCmd      `cmd:"" help:"Show a stored catalog"`
	Diff      DiffCmd      `cmd:"" help:"Compare two stored catalogs"`
	Delete    DeleteCmd    `cmd:"" help:"Delete a stored catalog snapshot"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Config   string   `short:"C" help:"YAML crawl configuration"`
	Category []string `short:"c" name:"category" placeholder:"NAME=URL" help:"Category to crawl (repeatable)"`
	Schema   string   `short:"s" env:"MEDIACAT_SCHEMA" help:"Layout schema name (default: list-item)"`

	Concurrency int           `env:"MEDIACAT_CONCURRENCY" help:"Concurrent fetches per category (default: 4)"`
	MaxPages    int           `env:"MEDIACAT_MAX_PAGES" help:"Listing pages fetched per category (default: no limit)"`
	RPS         float64       `name:"rps" env:"MEDIACAT_RPS" help:"Requests per second per domain (default: 2)"`
	Timeout     time.Duration `short:"t" env:"MEDIACAT_TIMEOUT" default:"30s" help:"Fetch timeout per page"`
	NoRetry     bool          `help:"Do not retry failed fetches"`

	Browser  bool   `short:"b" help:"Render pages in headless Chrome"`
	Fixtures string `help:"Serve listing pages from a fixture directory"`
	Record   string `help:"Record fetched pages as fixtures into this directory"`

	Out         string `short:"o" help:"Export the catalog to a file"`
	Format      string `enum:"auto,json,xml" default:"auto" help:"Export format (auto picks by file extension)"`
	Publish     string `env:"MEDIACAT_REDIS_ADDR" placeholder:"HOST:PORT" help:"Publish the catalog to a Redis stream"`
	MetricsAddr string `env:"MEDIACAT_METRICS_ADDR" placeholder:"HOST:PORT" help:"Serve Prometheus metrics during the crawl"`
	NoSave      bool   `help:"Do not store the catalog as a snapshot"`
}

// SchemasCmd is the "schemas" subcommand.
type SchemasCmd struct {
	Name   string `arg:"" optional:"" help:"Schema to show"`
	Config string `short:"C" help:"YAML crawl configuration with custom schemas"`
}

// SnapshotsCmd is the "snapshots" subcommand.
type SnapshotsCmd struct {
	Schema string `short:"s" help:"Only list snapshots taken with this schema"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of snapshots to list"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID       string `arg:"" optional:"" help:"Snapshot ID (default: latest)"`
	Category string `short:"c" help:"Only show this category"`
	JSON     bool   `name:"json" help:"Print the catalog as JSON"`
}

// DiffCmd is the "diff" subcommand.
type DiffCmd struct {
	Prev string `arg:"" help:"Earlier snapshot ID"`
	Next string `arg:"" optional:"" help:"Later snapshot ID (default: latest)"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Snapshot ID"`
	Force bool   `help:"Confirm deletion"`
}
