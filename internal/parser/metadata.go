package parser

import (
	"bytes"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
	"github.com/taylorskalyo/goreader/epub"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// UnknownAuthor is used when a file carries no author information
const UnknownAuthor = "Unknown author"

// readMetadata extracts descriptive fields from the file. Missing fields fall
// back to the file name and UnknownAuthor, so only I/O failures are errors.
func readMetadata(src Source, format types.Format) (types.Metadata, error) {
	var (
		meta types.Metadata
		err  error
	)

	switch format {
	case types.FormatEPUB, types.FormatMOBI:
		meta = epubMetadata(src)
	case types.FormatFB2:
		meta, err = fb2Metadata(src)
	}
	if err != nil {
		return types.Metadata{}, err
	}

	if meta.Title == "" {
		meta.Title = baseName(src.Name)
	}
	if meta.Author == "" {
		meta.Author = UnknownAuthor
	}
	return meta, nil
}

// epubMetadata reads the OPF package metadata. Archives without a valid
// container yield empty metadata.
func epubMetadata(src Source) types.Metadata {
	r, err := epub.NewReader(src.Reader, src.Size)
	if err != nil || len(r.Rootfiles) == 0 {
		return types.Metadata{}
	}

	rf := r.Rootfiles[0]
	return types.Metadata{
		Title:       strings.TrimSpace(rf.Title),
		Author:      strings.TrimSpace(rf.Creator),
		Description: CleanHTML(rf.Description),
		Language:    strings.TrimSpace(rf.Language),
	}
}

// fb2Metadata reads <description><title-info> of a FictionBook file
func fb2Metadata(src Source) (types.Metadata, error) {
	raw, err := src.Bytes()
	if err != nil {
		return types.Metadata{}, errors.Wrap(err, "read fb2")
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if _, err := doc.ReadFrom(bytes.NewReader(raw)); err != nil {
		// malformed XML still parses as chapters; describe it by file name
		return types.Metadata{}, nil
	}

	info := doc.FindElement("//title-info")
	if info == nil {
		return types.Metadata{}, nil
	}

	var meta types.Metadata
	if el := info.SelectElement("book-title"); el != nil {
		meta.Title = strings.TrimSpace(el.Text())
	}
	if el := info.SelectElement("lang"); el != nil {
		meta.Language = strings.TrimSpace(el.Text())
	}
	if author := info.SelectElement("author"); author != nil {
		var parts []string
		for _, tag := range []string{"first-name", "middle-name", "last-name"} {
			if el := author.SelectElement(tag); el != nil {
				if s := strings.TrimSpace(el.Text()); s != "" {
					parts = append(parts, s)
				}
			}
		}
		if len(parts) == 0 {
			if el := author.SelectElement("nickname"); el != nil {
				parts = append(parts, strings.TrimSpace(el.Text()))
			}
		}
		meta.Author = strings.Join(parts, " ")
	}
	if annotation := info.SelectElement("annotation"); annotation != nil {
		var paragraphs []string
		for _, p := range annotation.FindElements(".//p") {
			if s := strings.TrimSpace(p.Text()); s != "" {
				paragraphs = append(paragraphs, s)
			}
		}
		meta.Description = strings.Join(paragraphs, "\n\n")
	}
	return meta, nil
}
