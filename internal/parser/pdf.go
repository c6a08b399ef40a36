package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// PDFParser extracts one chapter per non-blank PDF page
type PDFParser struct{}

// NewPDFParser creates a new PDF parser
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// Parse extracts the text of each page in isolation, in physical page order.
// Blank pages are skipped and chapters carry no title.
func (p *PDFParser) Parse(ctx context.Context, src Source) (doc *types.Document, err error) {
	// the reader panics on some malformed object graphs
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = corrupt(fmt.Errorf("pdf reader: %v", r))
		}
	}()

	r, err := pdf.NewReader(src.Reader, src.Size)
	if err != nil {
		return nil, corrupt(errors.Wrap(err, "open pdf"))
	}

	doc = &types.Document{}
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, corrupt(errors.Wrapf(err, "extract text of page %d", i))
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		doc.Chapters = append(doc.Chapters, types.Chapter{Content: text})
	}

	if len(doc.Chapters) == 0 {
		return nil, empty(fmt.Sprintf("none of %d pages has text", total))
	}
	return doc, nil
}

// SupportedFormats returns the formats this parser supports
func (p *PDFParser) SupportedFormats() []types.Format {
	return []types.Format{types.FormatPDF}
}
