package parser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/unalkalkan/bookreader/pkg/types"
)

var (
	fb2SectionRe   = regexp.MustCompile(`(?s)<section[^>]*>(.*?)</section>`)
	fb2TitleRe     = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
	fb2ParagraphRe = regexp.MustCompile(`(?s)<p>(.*?)</p>`)
	xmlEncodingRe  = regexp.MustCompile(`^\x{FEFF}?\s*<\?xml[^>]*encoding\s*=\s*["']([^"']+)["']`)
)

// FB2Parser extracts chapters from FictionBook 2 files by pattern matching
// over the raw markup
type FB2Parser struct{}

// NewFB2Parser creates a new FB2 parser
func NewFB2Parser() *FB2Parser {
	return &FB2Parser{}
}

// Parse emits one chapter per <section> with paragraph text. Nested sections
// are not descended into: a section ends at the first closing tag.
func (p *FB2Parser) Parse(ctx context.Context, src Source) (*types.Document, error) {
	raw, err := src.Bytes()
	if err != nil {
		return nil, corrupt(errors.Wrap(err, "read fb2"))
	}

	text, err := decodeXML(raw)
	if err != nil {
		return nil, corrupt(err)
	}

	doc := &types.Document{}
	for i, section := range fb2SectionRe.FindAllStringSubmatch(text, -1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body := joinParagraphs(section[1])
		if body == "" {
			continue
		}

		title := ""
		if m := fb2TitleRe.FindStringSubmatch(section[1]); m != nil {
			title = CleanXML(m[1])
		}
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		doc.Chapters = append(doc.Chapters, types.Chapter{Title: title, Content: body})
	}

	if len(doc.Chapters) > 0 {
		return doc, nil
	}

	// no usable sections: take every paragraph of the file as one chapter
	if body := joinParagraphs(text); body != "" {
		doc.Chapters = append(doc.Chapters, types.Chapter{
			Title:   baseName(src.Name),
			Content: body,
		})
		return doc, nil
	}
	return nil, empty("no paragraph text")
}

// SupportedFormats returns the formats this parser supports
func (p *FB2Parser) SupportedFormats() []types.Format {
	return []types.Format{types.FormatFB2}
}

func joinParagraphs(markup string) string {
	var paragraphs []string
	for _, m := range fb2ParagraphRe.FindAllStringSubmatch(markup, -1) {
		if text := CleanXML(m[1]); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// decodeXML converts the document to UTF-8 using the charset named in the
// XML declaration
func decodeXML(raw []byte) (string, error) {
	m := xmlEncodingRe.FindSubmatch(raw)
	if m == nil {
		return string(raw), nil
	}
	label := strings.ToLower(string(m[1]))
	if label == "utf-8" || label == "utf8" {
		return string(raw), nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", errors.Wrapf(err, "unknown charset %q", label)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Wrapf(err, "decode %s", label)
	}
	return string(decoded), nil
}

// charsetReader adapts decodeXML's charset lookup for XML decoders
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(strings.ToLower(label))
	if err != nil {
		return nil, errors.Wrapf(err, "unknown charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// baseName returns the file name without directory and extension
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
