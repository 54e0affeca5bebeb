// Package yaml loads crawl configuration files.
package yaml

import (
	"errors"
	"io"
	"os"

	"github.com/fwojciec/mediacat"
	"gopkg.in/yaml.v3"
)

// Config describes one crawl run.
//
//	schema: list-item
//	concurrency: 4
//	categories:
//	  - name: food
//	    url: http://www.bbc.co.uk/iplayer/categories/food/all
//	schemas:
//	  - name: custom
//	    entry: {selector: .card}
//	    ...
type Config struct {
	// Schema names the layout schema used for every category.
	Schema string `yaml:"schema"`

	// Categories lists the categories to crawl, in output order.
	Categories []mediacat.CategorySource `yaml:"categories"`

	// Schemas are additional layout schemas made available by name.
	Schemas []mediacat.LayoutSchema `yaml:"schemas,omitempty"`

	Concurrency         int `yaml:"concurrency,omitempty"`
	CategoryConcurrency int `yaml:"categoryConcurrency,omitempty"`
	MaxPages            int `yaml:"maxPages,omitempty"`

	// RequestsPerSecond limits requests per domain. Zero means unlimited.
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a configuration document.
// Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, mediacat.Errorf(mediacat.EINVALID, "config is empty")
		}
		return nil, mediacat.Errorf(mediacat.EINVALID, "decode config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns an error if the configuration is inconsistent.
// A file may define only schemas; whether there is anything to crawl is
// decided once command line categories are merged in.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Categories))
	for i := range c.Categories {
		src := &c.Categories[i]
		if err := src.Validate(); err != nil {
			return err
		}
		if seen[src.Name] {
			return mediacat.Errorf(mediacat.EINVALID, "duplicate category %q", src.Name)
		}
		seen[src.Name] = true
	}
	if c.Concurrency < 0 || c.CategoryConcurrency < 0 || c.MaxPages < 0 || c.RequestsPerSecond < 0 {
		return mediacat.Errorf(mediacat.EINVALID, "limits must not be negative")
	}
	return nil
}

// Register adds the configured schemas to registry.
func (c *Config) Register(registry *mediacat.SchemaRegistry) error {
	for _, schema := range c.Schemas {
		if err := registry.Register(schema); err != nil {
			return err
		}
	}
	return nil
}

// MarshalSchema renders a layout schema in the same form used for custom
// schemas in a configuration file.
func MarshalSchema(schema *mediacat.LayoutSchema) ([]byte, error) {
	return yaml.Marshal(schema)
}
