package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/unalkalkan/bookreader/internal/book"
	"github.com/unalkalkan/bookreader/pkg/types"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	status := strings.ToUpper(c.Status)
	switch status {
	case "", types.StatusNotStarted, types.StatusReading, types.StatusCompleted:
	default:
		fmt.Fprintf(deps.Stderr, "error: unknown status %q\n", c.Status)
		return fmt.Errorf("unknown status %q", c.Status)
	}

	books, err := deps.Library.List(deps.Ctx, book.Filter{
		Status:        status,
		FavoritesOnly: c.Favorites,
		Search:        c.Search,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	if len(books) == 0 {
		fmt.Fprintln(deps.Stdout, "No books found. Use 'bookreader import' to add some.")
		return nil
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tFORMAT\tSIZE\tPROGRESS\tLAST READ")
	for _, b := range books {
		title := b.Title
		if b.Favorite {
			title = "* " + title
		}
		lastRead := "never"
		if b.LastReadAt != nil {
			lastRead = humanize.Time(*b.LastReadAt)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.0f%% (%d/%d)\t%s\n",
			b.ID, title, b.Author, b.Format, humanize.Bytes(uint64(b.FileSize)),
			b.Progress, b.CurrentPage, b.TotalPages, lastRead)
	}
	return tw.Flush()
}
