package mediacat

// CategorySource names one category and the root listing page it is
// crawled from.
type CategorySource struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Validate returns an error if the source is missing a required field.
func (s *CategorySource) Validate() error {
	if s.Name == "" {
		return Errorf(EINVALID, "category name required")
	}
	if s.URL == "" {
		return Errorf(EINVALID, "category %q root URL required", s.Name)
	}
	return nil
}

// FetchFailure records a listing page that could not be loaded.
type FetchFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Rejection records a listing entry that could not be extracted.
type Rejection struct {
	URL   string `json:"url"`
	Field string `json:"field"`
}

// Category is the set of items discovered from one root listing page.
// Items are unique by ID: the first occurrence wins and later duplicates
// are dropped. A Category only grows during the crawl that built it.
type Category struct {
	Name     string         `json:"name"`
	RootURL  string         `json:"rootURL"`
	Items    []*Item        `json:"items"`
	Failed   []FetchFailure `json:"failed,omitempty"`
	Rejected []Rejection    `json:"rejected,omitempty"`

	// Partial reports that the crawl was canceled, or stopped by its page
	// limit, before every reachable listing page was fetched.
	Partial bool `json:"partial,omitempty"`

	index map[string]struct{}
}

// NewCategory returns an empty category.
func NewCategory(name, rootURL string) *Category {
	return &Category{
		Name:    name,
		RootURL: rootURL,
		Items:   []*Item{},
		index:   make(map[string]struct{}),
	}
}

// Add appends item unless an item with the same ID is already present.
// Returns false for a duplicate.
func (c *Category) Add(item *Item) bool {
	if c.index == nil {
		c.reindex()
	}
	if _, ok := c.index[item.ID]; ok {
		return false
	}
	c.index[item.ID] = struct{}{}
	c.Items = append(c.Items, item)
	return true
}

// Has reports whether an item with the given ID is present.
func (c *Category) Has(id string) bool {
	if c.index == nil {
		c.reindex()
	}
	_, ok := c.index[id]
	return ok
}

// Item returns the item with the given ID, or nil.
func (c *Category) Item(id string) *Item {
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// IDs returns item IDs in discovery order.
func (c *Category) IDs() []string {
	ids := make([]string, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ID
	}
	return ids
}

// Len returns the number of items.
func (c *Category) Len() int {
	return len(c.Items)
}

// reindex rebuilds the ID index, e.g. after a category was decoded from storage.
func (c *Category) reindex() {
	c.index = make(map[string]struct{}, len(c.Items))
	for _, item := range c.Items {
		c.index[item.ID] = struct{}{}
	}
}
