package main

import (
	"fmt"

	"github.com/fwojciec/mediacat"
)

// Run executes the diff command.
func (c *DiffCmd) Run(deps *Dependencies) error {
	next := c.Next
	if next == "" {
		latest, err := findCatalog(deps, "")
		if err != nil {
			return err
		}
		next = latest.ID
	}

	diffs, err := deps.Catalogs.DiffSnapshots(deps.Ctx, c.Prev, next)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mediacat.ErrorMessage(err))
		return err
	}

	if len(diffs) == 0 {
		fmt.Fprintln(deps.Stdout, "No changes.")
		return nil
	}

	for _, d := range diffs {
		fmt.Fprintf(deps.Stdout, "%s: %d added, %d removed, %d changed\n",
			d.Name, len(d.Added), len(d.Removed), len(d.Changed))
		for _, id := range d.Added {
			fmt.Fprintf(deps.Stdout, "  + %s\n", id)
		}
		for _, id := range d.Removed {
			fmt.Fprintf(deps.Stdout, "  - %s\n", id)
		}
		for _, id := range d.Changed {
			fmt.Fprintf(deps.Stdout, "  ~ %s\n", id)
		}
	}
	return nil
}
