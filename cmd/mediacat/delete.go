package main

import (
	"fmt"

	"github.com/fwojciec/mediacat"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return mediacat.Errorf(mediacat.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Catalogs.DeleteSnapshot(deps.Ctx, c.ID); err != nil {
		if mediacat.ErrorCode(err) == mediacat.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: snapshot %q not found. Use 'mediacat snapshots' to see stored snapshots.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", mediacat.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted snapshot %s\n", c.ID)
	return nil
}
