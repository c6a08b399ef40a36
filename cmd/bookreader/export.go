package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/unalkalkan/bookreader/internal/book"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	archive, err := deps.Export.PackageBook(deps.Ctx, c.ID)
	if errors.Is(err, book.ErrNotFound) {
		fmt.Fprintf(deps.Stderr, "error: book %q not found. Use 'bookreader list' to see available books.\n", c.ID)
		return err
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	defer archive.Close()

	output := c.Output
	if output == "" {
		output = c.ID + ".zip"
	}

	if err := afero.WriteReader(deps.Fs, output, archive); err != nil {
		fmt.Fprintf(deps.Stderr, "error: write %s: %s\n", output, err)
		return err
	}

	info, err := deps.Fs.Stat(output)
	if err != nil {
		return errors.Wrapf(err, "stat %s", output)
	}
	fmt.Fprintf(deps.Stdout, "Exported %s to %s (%s)\n", c.ID, output, humanize.Bytes(uint64(info.Size())))
	return nil
}
