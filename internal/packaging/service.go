// Package packaging exports a book as a self-contained ZIP archive.
package packaging

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/unalkalkan/bookreader/internal/book"
	"github.com/unalkalkan/bookreader/internal/parser"
	"github.com/unalkalkan/bookreader/internal/util"
	"github.com/unalkalkan/bookreader/pkg/types"
)

// Version of the archive layout
const Version = "1.0"

// Service handles book packaging into ZIP archives
type Service struct {
	repo   book.Repository
	fs     afero.Fs
	parser *parser.Service
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the time source for export timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new packaging service
func NewService(repo book.Repository, fsys afero.Fs, p *parser.Service, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		fs:     fsys,
		parser: p,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Manifest is the top-level description of an exported book
type Manifest struct {
	Book       *types.Book `json:"book"`
	File       string      `json:"file"`
	Readable   bool        `json:"readable"`
	ExportedAt time.Time   `json:"exported_at"`
	Version    string      `json:"version"`
}

// TOC is the table of contents of an exported book
type TOC struct {
	Chapters []TOCChapter `json:"chapters"`
}

// TOCChapter describes one chapter entry in the archive
type TOCChapter struct {
	Page  int    `json:"page"`
	Title string `json:"title"`
	Chars int    `json:"chars"`
	Path  string `json:"path"`
}

// PackageBook streams a ZIP archive holding the record, the original file
// and the extracted chapters of a book. A file that cannot be parsed is
// exported without toc.json and chapters. The archive is written as the
// caller reads; closing the reader early abandons it.
func (s *Service) PackageBook(ctx context.Context, bookID string) (io.ReadCloser, error) {
	b, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	doc, parseErr := s.parser.Parse(ctx, b.FilePath, b.Format)
	if parseErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("exporting book without chapters",
			zap.String("id", bookID), zap.Error(parseErr))
	}

	manifest := &Manifest{
		Book:       b,
		File:       path.Base(b.FilePath),
		Readable:   doc != nil,
		ExportedAt: s.now().UTC(),
		Version:    Version,
	}

	pr, pw := io.Pipe()
	go func() {
		err := s.writeArchive(pw, manifest, b.FilePath, doc)
		if err != nil {
			s.logger.Warn("export aborted", zap.String("id", bookID), zap.Error(err))
		}
		pw.CloseWithError(err)
	}()
	return pr, nil
}

func (s *Service) writeArchive(w io.Writer, manifest *Manifest, filePath string, doc *types.Document) error {
	zw := zip.NewWriter(w)

	if err := addJSONFile(zw, "manifest.json", manifest); err != nil {
		return errors.Wrap(err, "add manifest")
	}

	if err := s.addBookFile(zw, filePath, manifest.File); err != nil {
		return errors.Wrapf(err, "add %s", manifest.File)
	}

	if doc != nil {
		toc := &TOC{Chapters: make([]TOCChapter, 0, len(doc.Chapters))}
		for i, ch := range doc.Chapters {
			entry := util.ChapterEntryPath(i)
			if err := addFileFromReader(zw, entry, strings.NewReader(ch.Content)); err != nil {
				return errors.Wrapf(err, "add chapter %d", i+1)
			}
			toc.Chapters = append(toc.Chapters, TOCChapter{
				Page:  i + 1,
				Title: ch.Title,
				Chars: utf8.RuneCountInString(ch.Content),
				Path:  entry,
			})
		}
		if err := addJSONFile(zw, "toc.json", toc); err != nil {
			return errors.Wrap(err, "add toc")
		}
	}

	return errors.Wrap(zw.Close(), "close zip")
}

func (s *Service) addBookFile(zw *zip.Writer, filePath, name string) error {
	f, err := s.fs.Open(filePath)
	if err != nil {
		s.logger.Warn("book file missing from export", zap.String("path", filePath), zap.Error(err))
		return nil
	}
	defer f.Close()
	return addFileFromReader(zw, name, f)
}

func addJSONFile(zw *zip.Writer, name string, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	return addFileFromReader(zw, name, bytes.NewReader(jsonData))
}

func addFileFromReader(zw *zip.Writer, name string, r io.Reader) error {
	w, err := zw.Create(name)
	if err != nil {
		return errors.Wrap(err, "create zip entry")
	}
	if _, err := io.Copy(w, r); err != nil {
		return errors.Wrap(err, "copy data")
	}
	return nil
}
