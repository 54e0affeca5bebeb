package mediacat

import (
	"context"
	"time"
)

// CatalogFormatVersion is the version of the serialized catalog layout.
const CatalogFormatVersion = 1

// Catalog is the terminal artifact of a crawl run: the categories that were
// crawled and the time the snapshot was taken. A Catalog is never modified
// after construction; each run builds a new one.
type Catalog struct {
	ID            string      `json:"id,omitempty"`
	FormatVersion int         `json:"formatVersion"`
	Schema        string      `json:"schema"`
	SnapshotTime  time.Time   `json:"snapshotTime"`
	Categories    []*Category `json:"categories"`
}

// NewCatalog returns a catalog of categories, in the given order, taken
// at snapshotTime using the named layout schema.
func NewCatalog(schema string, categories []*Category, snapshotTime time.Time) *Catalog {
	cats := make([]*Category, len(categories))
	copy(cats, categories)
	return &Catalog{
		FormatVersion: CatalogFormatVersion,
		Schema:        schema,
		SnapshotTime:  snapshotTime,
		Categories:    cats,
	}
}

// Category returns the named category, or nil.
func (c *Catalog) Category(name string) *Category {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat
		}
	}
	return nil
}

// Len returns the total number of items across categories.
func (c *Catalog) Len() int {
	n := 0
	for _, cat := range c.Categories {
		n += cat.Len()
	}
	return n
}

// Failures returns the fetch failures of every category keyed by category
// name. Categories without failures are omitted.
func (c *Catalog) Failures() map[string][]FetchFailure {
	failures := make(map[string][]FetchFailure)
	for _, cat := range c.Categories {
		if len(cat.Failed) > 0 {
			failures[cat.Name] = cat.Failed
		}
	}
	return failures
}

// CategoryDiff lists item IDs that appeared, disappeared or changed in one
// category between two catalogs.
type CategoryDiff struct {
	Name    string   `json:"name"`
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

// Diff compares two catalogs category by category. An item is changed when
// any of its extracted fields differ. Categories present in only one
// catalog report all of their items as added or removed.
// Categories without changes are omitted.
func Diff(prev, next *Catalog) []CategoryDiff {
	var diffs []CategoryDiff
	seen := make(map[string]bool)

	compare := func(name string, before, after *Category) {
		d := CategoryDiff{Name: name}
		if after != nil {
			for _, item := range after.Items {
				var prevItem *Item
				if before != nil {
					prevItem = before.Item(item.ID)
				}
				switch {
				case prevItem == nil:
					d.Added = append(d.Added, item.ID)
				case !prevItem.SameContent(item):
					d.Changed = append(d.Changed, item.ID)
				}
			}
		}
		if before != nil {
			for _, item := range before.Items {
				if after == nil || !after.Has(item.ID) {
					d.Removed = append(d.Removed, item.ID)
				}
			}
		}
		if len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0 {
			diffs = append(diffs, d)
		}
	}

	for _, cat := range next.Categories {
		seen[cat.Name] = true
		compare(cat.Name, prev.Category(cat.Name), cat)
	}
	for _, cat := range prev.Categories {
		if !seen[cat.Name] {
			compare(cat.Name, cat, nil)
		}
	}
	return diffs
}

// Snapshot summarizes a stored catalog.
type Snapshot struct {
	ID           string    `json:"id"`
	Schema       string    `json:"schema"`
	SnapshotTime time.Time `json:"snapshotTime"`
	Categories   int       `json:"categories"`
	Items        int       `json:"items"`
	Failed       int       `json:"failed"`
}

// SnapshotFilter represents a filter for FindSnapshots.
type SnapshotFilter struct {
	ID     *string `json:"id"`
	Schema *string `json:"schema"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// CatalogService persists catalogs as snapshots.
type CatalogService interface {
	// SaveCatalog stores the catalog and sets its ID.
	SaveCatalog(ctx context.Context, catalog *Catalog) error

	// FindCatalogByID retrieves a stored catalog.
	// Returns ENOTFOUND if the snapshot does not exist.
	FindCatalogByID(ctx context.Context, id string) (*Catalog, error)

	// FindLatestCatalog retrieves the most recent catalog.
	// Returns ENOTFOUND if nothing has been stored.
	FindLatestCatalog(ctx context.Context) (*Catalog, error)

	// FindSnapshots lists stored snapshots, newest first.
	FindSnapshots(ctx context.Context, filter SnapshotFilter) ([]*Snapshot, error)

	// DeleteSnapshot permanently removes a snapshot and its items.
	// Returns ENOTFOUND if the snapshot does not exist.
	DeleteSnapshot(ctx context.Context, id string) error

	// DiffSnapshots compares two stored snapshots like Diff.
	// Returns ENOTFOUND if either snapshot does not exist.
	DiffSnapshots(ctx context.Context, prevID, nextID string) ([]CategoryDiff, error)
}

// CatalogWriter exports a catalog, e.g. as a file or a message stream.
type CatalogWriter interface {
	WriteCatalog(ctx context.Context, catalog *Catalog) error
}
