package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// minChapterLength is the number of characters a cleaned archive entry must
// exceed to become a chapter. Shorter entries are covers, navigation
// stubs and the like.
const minChapterLength = 50

var htmlSuffixes = []string{".html", ".xhtml", ".htm"}

// EPUBParser extracts chapters from the XHTML parts of an ePUB archive
type EPUBParser struct{}

// NewEPUBParser creates a new ePUB parser
func NewEPUBParser() *EPUBParser {
	return &EPUBParser{}
}

// Parse walks the archive entries in stored order and emits one chapter per
// HTML part with enough text
func (p *EPUBParser) Parse(ctx context.Context, src Source) (*types.Document, error) {
	zr, err := zip.NewReader(src.Reader, src.Size)
	if err != nil {
		return nil, corrupt(errors.Wrap(err, "open epub archive"))
	}

	doc := &types.Document{}
	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.FileInfo().IsDir() || !isHTMLEntry(entry.Name) {
			continue
		}

		data, err := readZipEntry(entry)
		if err != nil {
			return nil, corrupt(errors.Wrapf(err, "read entry %s", entry.Name))
		}

		text := CleanHTML(string(data))
		if utf8.RuneCountInString(text) <= minChapterLength {
			continue
		}
		doc.Chapters = append(doc.Chapters, types.Chapter{
			Title:   fmt.Sprintf("Chapter %d", len(doc.Chapters)+1),
			Content: text,
		})
	}

	if len(doc.Chapters) == 0 {
		return nil, empty("no html part with readable text")
	}
	return doc, nil
}

// SupportedFormats returns the formats this parser supports
func (p *EPUBParser) SupportedFormats() []types.Format {
	return []types.Format{types.FormatEPUB}
}

func isHTMLEntry(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range htmlSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// mobiMagic marks a real Mobipocket file; it sits at offset 60 of the PDB
// header
var mobiMagic = []byte("BOOKMOBI")

const mobiMagicOffset = 60

// MOBIParser reads .mobi files that are ePUB archives under another
// extension. Genuine Mobipocket files are rejected.
type MOBIParser struct {
	epub *EPUBParser
}

// NewMOBIParser creates a new MOBI parser
func NewMOBIParser() *MOBIParser {
	return &MOBIParser{epub: NewEPUBParser()}
}

// Parse delegates to the ePUB routine unless the file is binary Mobipocket
func (p *MOBIParser) Parse(ctx context.Context, src Source) (*types.Document, error) {
	if isMobipocket(src) {
		return nil, unsupported("binary mobipocket files are not supported")
	}
	return p.epub.Parse(ctx, src)
}

// SupportedFormats returns the formats this parser supports
func (p *MOBIParser) SupportedFormats() []types.Format {
	return []types.Format{types.FormatMOBI}
}

func isMobipocket(src Source) bool {
	if src.Size < mobiMagicOffset+int64(len(mobiMagic)) {
		return false
	}
	buf := make([]byte, len(mobiMagic))
	if _, err := src.Reader.ReadAt(buf, mobiMagicOffset); err != nil {
		return false
	}
	return bytes.Equal(buf, mobiMagic)
}
