package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	var (
		format types.Format
		err    error
	)
	if c.Format != "" {
		format, err = types.ParseFormat(c.Format)
	} else {
		format, err = types.FormatFromPath(c.File)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	doc, err := deps.Parser.Parse(deps.Ctx, c.File, format)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	meta, err := deps.Parser.Metadata(deps.Ctx, c.File, format)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Title:    %s\n", meta.Title)
	fmt.Fprintf(deps.Stdout, "Author:   %s\n", meta.Author)
	if meta.Language != "" {
		fmt.Fprintf(deps.Stdout, "Language: %s\n", meta.Language)
	}
	fmt.Fprintf(deps.Stdout, "Format:   %s\n", format)
	fmt.Fprintf(deps.Stdout, "Chapters: %d\n\n", doc.PageCount())

	for i, ch := range doc.Chapters {
		title := ch.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(deps.Stdout, "%4d. %s (%d chars)\n", i+1, title, utf8.RuneCountInString(ch.Content))
		if c.Full {
			fmt.Fprintf(deps.Stdout, "\n%s\n\n", ch.Content)
		}
	}
	return nil
}
