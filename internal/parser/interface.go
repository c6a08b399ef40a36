package parser

import (
	"context"
	"io"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// Source is an opened book file handed to a Parser
type Source struct {
	// Name is the path the file was opened from
	Name   string
	Reader io.ReaderAt
	Size   int64
}

// Bytes reads the whole source into memory
func (s Source) Bytes() ([]byte, error) {
	return io.ReadAll(io.NewSectionReader(s.Reader, 0, s.Size))
}

// Parser defines the interface for document parsers
type Parser interface {
	// Parse extracts the ordered chapters of the document
	Parse(ctx context.Context, src Source) (*types.Document, error)

	// SupportedFormats returns the file formats this parser handles
	SupportedFormats() []types.Format
}

// Factory creates parsers for different formats
type Factory interface {
	// GetParser returns a parser for the given format
	GetParser(format types.Format) (Parser, error)
}
