package main

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Library.Stats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Books:       %d (%s)\n", stats.Total, humanize.Bytes(uint64(stats.TotalBytes)))
	fmt.Fprintf(deps.Stdout, "Not started: %d\n", stats.ByStatus[types.StatusNotStarted])
	fmt.Fprintf(deps.Stdout, "Reading:     %d\n", stats.ByStatus[types.StatusReading])
	fmt.Fprintf(deps.Stdout, "Completed:   %d\n", stats.ByStatus[types.StatusCompleted])
	fmt.Fprintf(deps.Stdout, "Favorites:   %d\n", stats.Favorites)
	return nil
}
