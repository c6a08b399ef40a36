package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// Placeholder turns a parse failure into a one-chapter document that tells
// the reader what went wrong
func Placeholder(err error) *types.Document {
	var pe *ParseError
	if !errors.As(err, &pe) {
		pe = &ParseError{Kind: ErrCorrupt, Err: err}
	}

	var ch types.Chapter
	switch {
	case errors.Is(pe, ErrNotFound):
		ch = types.Chapter{
			Title:   "File not found",
			Content: fmt.Sprintf("The file %s was not found on this device.\n\nTry importing the book again.", pe.Path),
		}
	case errors.Is(pe, ErrEmpty):
		ch = types.Chapter{
			Title:   "Empty book",
			Content: "No readable text could be extracted from this book.",
		}
	case errors.Is(pe, ErrUnsupportedFormat):
		ch = types.Chapter{
			Title:   "Unsupported format",
			Content: fmt.Sprintf("This book cannot be opened: %s.", pe.Detail()),
		}
	default:
		ch = types.Chapter{
			Title:   "Read error",
			Content: fmt.Sprintf("An error occurred while reading the book: %s", pe.Detail()),
		}
	}

	return &types.Document{Chapters: []types.Chapter{ch}}
}
