package parser

import (
	"context"

	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// TXTParser parses plain text files
type TXTParser struct{}

// NewTXTParser creates a new TXT parser
func NewTXTParser() *TXTParser {
	return &TXTParser{}
}

// Parse returns the whole file, unmodified, as a single chapter named after
// the file
func (p *TXTParser) Parse(ctx context.Context, src Source) (*types.Document, error) {
	data, err := src.Bytes()
	if err != nil {
		return nil, corrupt(errors.Wrap(err, "read text"))
	}

	return &types.Document{
		Chapters: []types.Chapter{{
			Title:   baseName(src.Name),
			Content: string(data),
		}},
	}, nil
}

// SupportedFormats returns the formats this parser supports
func (p *TXTParser) SupportedFormats() []types.Format {
	return []types.Format{types.FormatTXT}
}
