// Package redis publishes catalogs to Redis streams.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fwojciec/mediacat"
	"github.com/redis/go-redis/v9"
)

// Ensure Publisher implements mediacat.CatalogWriter.
var _ mediacat.CatalogWriter = (*Publisher)(nil)

const (
	// DefaultStream is the stream catalogs are published to.
	DefaultStream = "mediacat:catalog"

	// DefaultMaxLen caps the stream length (approximately).
	DefaultMaxLen = 10000
)

// Publisher writes one stream entry per category of a catalog.
type Publisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithStream sets the stream name.
func WithStream(stream string) Option {
	return func(p *Publisher) {
		p.stream = stream
	}
}

// WithMaxLen sets the approximate maximum stream length.
func WithMaxLen(n int64) Option {
	return func(p *Publisher) {
		p.maxLen = n
	}
}

// NewPublisher creates a new Publisher.
func NewPublisher(client *redis.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		stream: DefaultStream,
		maxLen: DefaultMaxLen,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewClient connects to the Redis server at addr and verifies the
// connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	return client, nil
}

// WriteCatalog appends an entry for every category in catalog. Entries are
// written in a single pipeline.
func (p *Publisher) WriteCatalog(ctx context.Context, catalog *mediacat.Catalog) error {
	if catalog == nil {
		return mediacat.Errorf(mediacat.EINVALID, "catalog required")
	}

	pipe := p.client.Pipeline()
	for _, cat := range catalog.Categories {
		payload, err := json.Marshal(cat)
		if err != nil {
			return fmt.Errorf("marshal category %s: %w", cat.Name, err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: p.maxLen,
			Approx: true,
			Values: map[string]any{
				"snapshot":      catalog.ID,
				"schema":        catalog.Schema,
				"snapshot_time": catalog.SnapshotTime.UTC().Format(time.RFC3339Nano),
				"category":      cat.Name,
				"items":         strconv.Itoa(cat.Len()),
				"failed":        strconv.Itoa(len(cat.Failed)),
				"partial":       strconv.FormatBool(cat.Partial),
				"payload":       string(payload),
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish to stream %s: %w", p.stream, err)
	}
	return nil
}
