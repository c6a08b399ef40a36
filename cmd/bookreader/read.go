package main

import (
	"fmt"
)

// Run executes the read command.
func (c *ReadCmd) Run(deps *Dependencies) error {
	number := c.Page
	if number == 0 {
		b, err := deps.Library.Get(deps.Ctx, c.ID)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: book %q not found. Use 'bookreader list' to see available books.\n", c.ID)
			return err
		}
		number = b.CurrentPage
	}

	page, err := deps.Library.ReadPage(deps.Ctx, c.ID, number)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Page %d of %d\n\n", page.Number, page.Total)
	if page.Chapter.Title != "" {
		fmt.Fprintf(deps.Stdout, "## %s\n\n", page.Chapter.Title)
	}
	fmt.Fprintln(deps.Stdout, page.Chapter.Content)
	return nil
}
