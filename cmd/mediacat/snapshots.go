package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/mediacat"
)

// Run executes the snapshots command.
func (c *SnapshotsCmd) Run(deps *Dependencies) error {
	filter := mediacat.SnapshotFilter{Limit: c.Limit}
	if c.Schema != "" {
		filter.Schema = &c.Schema
	}

	snapshots, err := deps.Catalogs.FindSnapshots(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mediacat.ErrorMessage(err))
		return err
	}

	if len(snapshots) == 0 {
		fmt.Fprintln(deps.Stdout, "No snapshots found. Use 'mediacat crawl' to create one.")
		return nil
	}

	for _, s := range snapshots {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-12s  %d categories, %d items, %d failed\n",
			s.ID, s.SnapshotTime.Format(time.RFC3339), s.Schema, s.Categories, s.Items, s.Failed)
	}
	return nil
}
