package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// Failure kinds reported by the parser. Match them with errors.Is.
var (
	ErrNotFound          = errors.New("file not found")
	ErrCorrupt           = errors.New("file could not be read")
	ErrEmpty             = errors.New("no readable content")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ParseError describes why a file could not be turned into a document
type ParseError struct {
	Kind   error
	Path   string
	Format types.Format
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s (%s): %v", e.Path, e.Format, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the kind of this error
func (e *ParseError) Is(target error) bool {
	return target == e.Kind
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Detail returns the underlying cause, or the kind when there is none
func (e *ParseError) Detail() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func newParseError(kind error, path string, format types.Format, err error) *ParseError {
	return &ParseError{Kind: kind, Path: path, Format: format, Err: err}
}

// corrupt and empty are used by the format parsers, which do not know the
// path; Service.Parse fills it in.
func corrupt(err error) error {
	return &ParseError{Kind: ErrCorrupt, Err: errors.WithStack(err)}
}

func empty(detail string) error {
	return &ParseError{Kind: ErrEmpty, Err: errors.New(detail)}
}

func unsupported(detail string) error {
	return &ParseError{Kind: ErrUnsupportedFormat, Err: errors.New(detail)}
}
