package main

import (
	"context"
	"io"

	"github.com/spf13/afero"

	"github.com/unalkalkan/bookreader/internal/library"
	"github.com/unalkalkan/bookreader/internal/packaging"
	"github.com/unalkalkan/bookreader/internal/parser"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Fs      afero.Fs
	Library *library.Service
	Parser  *parser.Service
	Export  *packaging.Service
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config   string `short:"c" type:"path" env:"BR_CONFIG" help:"Path to configuration file"`
	LogLevel string `name:"log-level" default:"warn" help:"Log level for diagnostics on stderr"`

	Import ImportCmd `cmd:"" help:"Import book files or directories into the library"`
	List   ListCmd   `cmd:"" help:"List books in the library"`
	Read   ReadCmd   `cmd:"" help:"Print a page of a book and remember the position"`
	Delete DeleteCmd `cmd:"" help:"Delete a book and its file"`
	Export ExportCmd `cmd:"" help:"Write a book with its chapters to a ZIP archive"`
	Parse  ParseCmd  `cmd:"" help:"Show the chapters of a file without importing it"`
	Stats  StatsCmd  `cmd:"" help:"Show library statistics"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Paths []string `arg:"" type:"path" help:"Files or directories to import"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Status    string `help:"Only books with this status (NOT_STARTED, READING, COMPLETED)"`
	Favorites bool   `short:"F" help:"Only favorite books"`
	Search    string `short:"s" help:"Match title or author"`
}

// ReadCmd is the "read" subcommand.
type ReadCmd struct {
	ID   string `arg:"" help:"Book ID"`
	Page int    `arg:"" optional:"" help:"Page number (defaults to the current page)"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Book ID"`
	Force bool   `help:"Confirm deletion"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	ID     string `arg:"" help:"Book ID"`
	Output string `short:"o" type:"path" help:"Archive path (defaults to <id>.zip in the working directory)"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	File   string `arg:"" type:"path" help:"Book file"`
	Format string `short:"f" help:"Format (epub, pdf, fb2, mobi, txt); defaults to the file extension"`
	Full   bool   `help:"Print chapter content"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}
