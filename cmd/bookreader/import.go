package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/internal/book"
	"github.com/unalkalkan/bookreader/internal/library"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	var results []library.ImportResult
	for _, p := range c.Paths {
		info, err := deps.Fs.Stat(p)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", err)
			results = append(results, library.ImportResult{Path: p, Err: err})
			continue
		}

		if info.IsDir() {
			dirResults, err := deps.Library.ImportDir(deps.Ctx, p)
			if err != nil {
				return err
			}
			results = append(results, dirResults...)
			continue
		}

		b, err := deps.Library.ImportFile(deps.Ctx, p)
		results = append(results, library.ImportResult{Path: p, Book: b, Err: err})
	}

	var imported, skipped, failed int
	for _, r := range results {
		switch {
		case r.Err == nil:
			imported++
			fmt.Fprintf(deps.Stdout, "Imported %q by %s (%d pages) as %s\n", r.Book.Title, r.Book.Author, r.Book.TotalPages, r.Book.ID)
		case errors.Is(r.Err, book.ErrDuplicate):
			skipped++
			fmt.Fprintf(deps.Stdout, "Skipped %s: already in library as %s\n", r.Path, r.Book.ID)
		default:
			failed++
			fmt.Fprintf(deps.Stderr, "error: %s: %s\n", r.Path, r.Err)
		}
	}

	fmt.Fprintf(deps.Stdout, "%d imported, %d skipped, %d failed\n", imported, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(results))
	}
	return nil
}
