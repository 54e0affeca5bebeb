package mediacat

import (
	"sort"
	"sync"
)

// Locator describes where a value lives relative to a node.
type Locator struct {
	// Selector is a CSS selector evaluated against the node's descendants.
	// An empty selector refers to the node itself.
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`

	// Attr names the attribute holding the value.
	// An empty Attr means the node's text.
	Attr string `json:"attr,omitempty" yaml:"attr,omitempty"`
}

// IsZero reports whether the locator is unset.
func (l *Locator) IsZero() bool {
	return l == nil || (l.Selector == "" && l.Attr == "")
}

// LayoutSchema declares where each field of a listing entry lives for one
// revision of the site markup. Schemas are pure data: supporting a new
// markup revision means supplying a new schema value.
type LayoutSchema struct {
	// Name identifies the markup revision, e.g. "content-item".
	Name string `json:"name" yaml:"name"`

	// Origin is prepended to relative item links. When empty the origin of
	// the listing page URL is used.
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty"`

	Entry      Locator  `json:"entry" yaml:"entry"`
	Title      Locator  `json:"title" yaml:"title"`
	Subtitle   *Locator `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Synopsis   Locator  `json:"synopsis" yaml:"synopsis"`
	Thumbnail  Locator  `json:"thumbnail" yaml:"thumbnail"`
	Link       Locator  `json:"link" yaml:"link"`
	Pointer    Locator  `json:"pointer" yaml:"pointer"`
	Pagination Locator  `json:"pagination" yaml:"pagination"`

	// ID locates the site-assigned identifier on the entry node. Its
	// attribute is also looked up on the entry's parent.
	ID *Locator `json:"id,omitempty" yaml:"id,omitempty"`

	// LinkIDAttr is the data attribute on the entry's link that carries the
	// identifier when neither the entry nor its parent does.
	LinkIDAttr string `json:"linkIdAttr,omitempty" yaml:"linkIdAttr,omitempty"`
}

// Validate returns a *SchemaError if a required locator is absent.
func (s *LayoutSchema) Validate() error {
	if s == nil {
		return &SchemaError{Field: "schema", Reason: "no layout schema configured"}
	}

	required := []struct {
		field string
		loc   Locator
	}{
		{"entry", s.Entry},
		{"title", s.Title},
		{"synopsis", s.Synopsis},
		{"thumbnail", s.Thumbnail},
		{"link", s.Link},
		{"pointer", s.Pointer},
		{"pagination", s.Pagination},
	}
	for _, r := range required {
		if r.loc.Selector == "" {
			return &SchemaError{Schema: s.Name, Field: r.field}
		}
	}

	if s.ID != nil && s.ID.Attr == "" {
		return &SchemaError{Schema: s.Name, Field: "id", Reason: "attribute required"}
	}
	if s.ID == nil && s.LinkIDAttr == "" {
		return &SchemaError{Schema: s.Name, Field: "id", Reason: "id locator or link id attribute required"}
	}
	return nil
}

// Built-in layout schemas for the two observed revisions of the iPlayer
// category listing markup.
var (
	// ContentItemSchema matches listings built from "content-item" blocks
	// where grouped programmes link onward through an "lnk" anchor.
	ContentItemSchema = LayoutSchema{
		Name:       "content-item",
		Origin:     "http://www.bbc.co.uk",
		Entry:      Locator{Selector: ".content-item"},
		Title:      Locator{Selector: ".content-item__title"},
		Subtitle:   &Locator{Selector: ".content-item__info-primary .content-item__description"},
		Synopsis:   Locator{Selector: ".content-item__info__secondary .content-item__description"},
		Thumbnail:  Locator{Selector: ".rs-image picture source", Attr: "srcset"},
		Link:       Locator{Selector: "a", Attr: "href"},
		Pointer:    Locator{Selector: ".lnk", Attr: "href"},
		Pagination: Locator{Selector: ".page a", Attr: "href"},
		ID:         &Locator{Attr: "data-ip-id"},
		LinkIDAttr: "data-ip-id",
	}

	// ListItemSchema matches the later "list-item-inner" markup where
	// grouped programmes link onward through a "view-more-container".
	ListItemSchema = LayoutSchema{
		Name:       "list-item",
		Origin:     "http://www.bbc.co.uk",
		Entry:      Locator{Selector: ".list-item-inner"},
		Title:      Locator{Selector: ".content-item__title"},
		Subtitle:   &Locator{Selector: ".content-item__info-primary .content-item__description"},
		Synopsis:   Locator{Selector: ".content-item__info__secondary .content-item__description"},
		Thumbnail:  Locator{Selector: ".rs-image picture source", Attr: "srcset"},
		Link:       Locator{Selector: "a", Attr: "href"},
		Pointer:    Locator{Selector: ".view-more-container", Attr: "href"},
		Pagination: Locator{Selector: ".page a", Attr: "href"},
		ID:         &Locator{Attr: "data-ip-id"},
		LinkIDAttr: "data-ip-id",
	}
)

// SchemaRegistry holds layout schemas by name.
// The caller selects a schema explicitly; nothing is auto-detected.
// It is safe for concurrent use.
type SchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string]LayoutSchema
}

// NewSchemaRegistry returns a registry holding the built-in schemas.
func NewSchemaRegistry() *SchemaRegistry {
	r := &SchemaRegistry{schemas: make(map[string]LayoutSchema)}
	r.schemas[ContentItemSchema.Name] = ContentItemSchema
	r.schemas[ListItemSchema.Name] = ListItemSchema
	return r
}

// Register validates and adds a schema.
// A schema already registered under the same name is replaced.
func (r *SchemaRegistry) Register(schema LayoutSchema) error {
	if schema.Name == "" {
		return &SchemaError{Field: "name"}
	}
	if err := schema.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[schema.Name] = schema
	return nil
}

// Lookup returns a copy of the named schema.
// Returns ENOTFOUND if no schema is registered under that name.
func (r *SchemaRegistry) Lookup(name string) (*LayoutSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schema, ok := r.schemas[name]
	if !ok {
		return nil, Errorf(ENOTFOUND, "layout schema %q not found", name)
	}
	return &schema, nil
}

// List returns the registered schema names in sorted order.
func (r *SchemaRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
