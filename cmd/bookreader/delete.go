package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/internal/book"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return errors.New("use --force to confirm deletion")
	}

	b, err := deps.Library.Get(deps.Ctx, c.ID)
	if errors.Is(err, book.ErrNotFound) {
		fmt.Fprintf(deps.Stderr, "error: book %q not found. Use 'bookreader list' to see available books.\n", c.ID)
		return err
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	if err := deps.Library.Delete(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %q\n", b.Title)
	return nil
}
