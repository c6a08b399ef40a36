// Package library imports book files and tracks reading progress.
package library

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unalkalkan/bookreader/internal/book"
	"github.com/unalkalkan/bookreader/internal/parser"
	"github.com/unalkalkan/bookreader/internal/util"
	"github.com/unalkalkan/bookreader/pkg/types"
)

// DefaultMaxFileSize caps imported files at 100 MB
const DefaultMaxFileSize int64 = 100 << 20

// ErrTooLarge is returned when an imported file exceeds the size limit
var ErrTooLarge = errors.New("file too large")

// Page is one chapter of an open book
type Page struct {
	Number  int           `json:"number"`
	Total   int           `json:"total"`
	Chapter types.Chapter `json:"chapter"`
}

// ImportResult reports the outcome for one file of ImportDir
type ImportResult struct {
	Path string
	Book *types.Book
	Err  error
}

// Service manages the books in the library
type Service struct {
	fs          afero.Fs
	booksDir    string
	repo        book.Repository
	parser      *parser.Service
	maxFileSize int64
	concurrency int
	now         func() time.Time
	logger      *zap.Logger

	// serializes the duplicate check with the save
	importMu sync.Mutex
}

// Option configures a Service
type Option func(*Service)

// WithMaxFileSize sets the import size limit in bytes
func WithMaxFileSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// WithConcurrency bounds the number of files ImportDir processes at once
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a library storing imported files under booksDir in fsys.
// The parser service must read from the same filesystem.
func NewService(fsys afero.Fs, booksDir string, repo book.Repository, p *parser.Service, opts ...Option) *Service {
	s := &Service{
		fs:          fsys,
		booksDir:    booksDir,
		repo:        repo,
		parser:      p,
		maxFileSize: DefaultMaxFileSize,
		concurrency: 4,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import copies the content of r into the library as a new book named name.
// A file whose content is already in the library yields book.ErrDuplicate
// together with the existing record.
func (s *Service) Import(ctx context.Context, name string, r io.Reader) (*types.Book, error) {
	format, err := types.FormatFromPath(name)
	if err != nil {
		return nil, errors.Wrap(parser.ErrUnsupportedFormat, err.Error())
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, errors.Wrapf(ErrTooLarge, "%s exceeds %d bytes", name, s.maxFileSize)
	}
	if err := checkContent(data, format); err != nil {
		return nil, errors.Wrap(err, name)
	}

	hash := fmt.Sprintf("%016x", xxhash.Sum64(data))
	if existing, err := s.duplicate(ctx, name, hash); existing != nil || err != nil {
		return existing, err
	}

	id := uuid.New().String()
	filePath := util.BookFilePath(s.booksDir, id, format)
	if err := s.fs.MkdirAll(s.booksDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create books directory")
	}
	if err := afero.WriteReader(s.fs, filePath, bytes.NewReader(data)); err != nil {
		return nil, errors.Wrapf(err, "write %s", filePath)
	}

	b, err := s.describe(ctx, id, name, filePath, format)
	if err != nil {
		s.discard(filePath, format)
		return nil, err
	}
	b.FileSize = int64(len(data))
	b.FileHash = hash

	// the same content may have been imported while this one was described
	s.importMu.Lock()
	existing, err := s.duplicate(ctx, name, hash)
	if existing == nil && err == nil {
		err = errors.Wrap(s.repo.SaveBook(ctx, b), "save book")
	}
	s.importMu.Unlock()
	if existing != nil || err != nil {
		s.discard(filePath, format)
		return existing, err
	}

	s.logger.Info("imported book",
		zap.String("id", b.ID),
		zap.String("title", b.Title),
		zap.String("format", string(format)),
		zap.Int("pages", b.TotalPages))
	return b, nil
}

// ImportFile imports the file at path
func (s *Service) ImportFile(ctx context.Context, path string) (*types.Book, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return s.Import(ctx, filepath.Base(path), f)
}

// ImportDir imports every file with a supported extension directly inside
// dir. Per-file failures are reported in the results, not as an error.
func (s *Service) ImportDir(ctx context.Context, dir string) ([]ImportResult, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := types.FormatFromPath(e.Name()); err != nil {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	results := make([]ImportResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := s.ImportFile(gctx, p)
			results[i] = ImportResult{Path: p, Book: b, Err: err}
			if err != nil {
				s.logger.Warn("import failed", zap.String("path", p), zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Get returns the record of a book
func (s *Service) Get(ctx context.Context, id string) (*types.Book, error) {
	return s.repo.GetBook(ctx, id)
}

// List returns the books passing filter, most recently read first
func (s *Service) List(ctx context.Context, filter book.Filter) ([]*types.Book, error) {
	return s.repo.ListBooks(ctx, filter)
}

// Open returns a book with its document. An unreadable file yields a
// placeholder document. A page count that no longer matches the file is
// corrected in the record.
func (s *Service) Open(ctx context.Context, id string) (*types.Book, *types.Document, error) {
	b, doc, _, err := s.open(ctx, id)
	return b, doc, err
}

// ReadPage returns page number of a book, clamped to the pages it has, and
// records it as the reading position
func (s *Service) ReadPage(ctx context.Context, id string, number int) (*Page, error) {
	b, doc, readable, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}

	total := doc.PageCount()
	number = max(1, min(number, total))
	ch, _ := doc.Page(number)

	if readable {
		book.ApplyProgress(b, number, s.now())
		if err := s.repo.UpdateBook(ctx, b); err != nil {
			return nil, errors.Wrap(err, "save progress")
		}
	}
	return &Page{Number: number, Total: total, Chapter: ch}, nil
}

func (s *Service) open(ctx context.Context, id string) (*types.Book, *types.Document, bool, error) {
	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, nil, false, err
	}

	doc, err := s.parser.Parse(ctx, b.FilePath, b.Format)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, false, ctx.Err()
		}
		s.logger.Warn("opening unreadable book", zap.String("id", id), zap.Error(err))
		return b, parser.Placeholder(err), false, nil
	}

	if n := doc.PageCount(); b.TotalPages != n {
		s.logger.Debug("correcting page count",
			zap.String("id", id),
			zap.Int("stored", b.TotalPages),
			zap.Int("actual", n))
		b.TotalPages = n
		if b.LastReadAt != nil {
			b.CurrentPage = min(b.CurrentPage, n)
			b.Progress = book.Progress(b.CurrentPage, n)
			b.Status = book.StatusFor(b.Progress)
		}
		b.UpdatedAt = s.now()
		if err := s.repo.UpdateBook(ctx, b); err != nil {
			return nil, nil, false, errors.Wrap(err, "update page count")
		}
	}
	return b, doc, true, nil
}

// SetFavorite marks or unmarks a book as favorite
func (s *Service) SetFavorite(ctx context.Context, id string, favorite bool) (*types.Book, error) {
	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Favorite = favorite
	b.UpdatedAt = s.now()
	if err := s.repo.UpdateBook(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the record, the stored file and any cached content of a book
func (s *Service) Delete(ctx context.Context, id string) error {
	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.removeFile(b.FilePath)
	s.parser.Forget(b.FilePath, b.Format)

	s.logger.Info("deleted book", zap.String("id", id), zap.String("title", b.Title))
	return nil
}

// Stats summarises the library
func (s *Service) Stats(ctx context.Context) (*types.LibraryStats, error) {
	books, err := s.repo.ListBooks(ctx, book.Filter{})
	if err != nil {
		return nil, err
	}

	stats := &types.LibraryStats{
		Total: len(books),
		ByStatus: map[string]int{
			types.StatusNotStarted: 0,
			types.StatusReading:    0,
			types.StatusCompleted:  0,
		},
	}
	for _, b := range books {
		stats.ByStatus[b.Status]++
		stats.TotalBytes += b.FileSize
		if b.Favorite {
			stats.Favorites++
		}
	}
	return stats, nil
}

// describe builds the record of a freshly written file. Metadata falls back
// to the name the file was imported under.
func (s *Service) describe(ctx context.Context, id, name, filePath string, format types.Format) (*types.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fallback := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	meta, err := s.parser.Metadata(ctx, filePath, format)
	if err != nil {
		s.logger.Warn("unreadable metadata", zap.String("name", name), zap.Error(err))
		meta = types.Metadata{Title: fallback, Author: parser.UnknownAuthor}
	}
	if meta.Title == strings.TrimSuffix(path.Base(filePath), path.Ext(filePath)) {
		meta.Title = fallback
	}

	total := 0
	doc, err := s.parser.Parse(ctx, filePath, format)
	if err != nil {
		s.logger.Warn("imported book has no readable content",
			zap.String("name", name),
			zap.Error(err))
	} else {
		total = doc.PageCount()
	}

	now := s.now()
	return &types.Book{
		ID:          id,
		Title:       meta.Title,
		Author:      meta.Author,
		Description: meta.Description,
		FilePath:    filePath,
		Format:      format,
		TotalPages:  total,
		CurrentPage: 1,
		Status:      types.StatusNotStarted,
		AddedAt:     now,
		UpdatedAt:   now,
	}, nil
}

// duplicate returns the record already holding content with hash, together
// with book.ErrDuplicate. Both are nil when the content is new.
func (s *Service) duplicate(ctx context.Context, name, hash string) (*types.Book, error) {
	existing, err := s.repo.FindBookByHash(ctx, hash)
	switch {
	case err == nil:
		return existing, errors.Wrapf(book.ErrDuplicate, "%s is %q", name, existing.Title)
	case errors.Is(err, book.ErrNotFound):
		return nil, nil
	default:
		return nil, errors.Wrap(err, "check duplicate")
	}
}

// discard removes a written file that did not become a book
func (s *Service) discard(filePath string, format types.Format) {
	s.removeFile(filePath)
	s.parser.Forget(filePath, format)
}

func (s *Service) removeFile(p string) {
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("remove book file", zap.String("path", p), zap.Error(err))
	}
}

// checkContent rejects files whose bytes do not match their extension
func checkContent(data []byte, format types.Format) error {
	if len(data) == 0 && format != types.FormatTXT {
		return errors.Wrap(parser.ErrUnsupportedFormat, "empty file")
	}

	mt := mimetype.Detect(data)
	switch format {
	case types.FormatPDF:
		if !isA(mt, "application/pdf") {
			return errors.Wrapf(parser.ErrUnsupportedFormat, "content is %s, not PDF", mt.String())
		}
	case types.FormatEPUB, types.FormatMOBI:
		if !isA(mt, "application/zip") {
			return errors.Wrapf(parser.ErrUnsupportedFormat, "content is %s, not a zip archive", mt.String())
		}
	}
	return nil
}

// isA reports whether mt or one of its parents is the expected type
func isA(mt *mimetype.MIME, expected string) bool {
	for ; mt != nil; mt = mt.Parent() {
		if mt.Is(expected) {
			return true
		}
	}
	return false
}
