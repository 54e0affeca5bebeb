package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/mediacat"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	catalog, err := findCatalog(deps, c.ID)
	if err != nil {
		return err
	}

	categories := catalog.Categories
	if c.Category != "" {
		cat := catalog.Category(c.Category)
		if cat == nil {
			fmt.Fprintf(deps.Stderr, "error: category %q not in snapshot %s\n", c.Category, catalog.ID)
			return mediacat.Errorf(mediacat.ENOTFOUND, "category %q not found", c.Category)
		}
		categories = []*mediacat.Category{cat}
	}

	if c.JSON {
		out := *catalog
		out.Categories = categories
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(&out)
	}

	fmt.Fprintf(deps.Stdout, "Snapshot %s (%s, %s)\n", catalog.ID, catalog.Schema, catalog.SnapshotTime.Format(time.RFC3339))
	for _, cat := range categories {
		partial := ""
		if cat.Partial {
			partial = ", partial"
		}
		fmt.Fprintf(deps.Stdout, "\n%s (%d items%s)\n", cat.Name, cat.Len(), partial)
		for _, item := range cat.Items {
			title := item.Title
			if item.Subtitle != "" {
				title += ": " + item.Subtitle
			}
			fmt.Fprintf(deps.Stdout, "  %s  %s\n", item.ID, title)
		}
		for _, f := range cat.Failed {
			fmt.Fprintf(deps.Stdout, "  failed %s: %s\n", f.URL, f.Error)
		}
	}
	return nil
}

// findCatalog returns the snapshot with id, or the latest one when id is
// empty, reporting lookup errors on stderr.
func findCatalog(deps *Dependencies, id string) (*mediacat.Catalog, error) {
	var catalog *mediacat.Catalog
	var err error
	if id == "" {
		catalog, err = deps.Catalogs.FindLatestCatalog(deps.Ctx)
	} else {
		catalog, err = deps.Catalogs.FindCatalogByID(deps.Ctx, id)
	}
	if mediacat.ErrorCode(err) == mediacat.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "error: %s. Use 'mediacat snapshots' to see stored snapshots.\n", mediacat.ErrorMessage(err))
		return nil, err
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mediacat.ErrorMessage(err))
		return nil, err
	}
	return catalog, nil
}
