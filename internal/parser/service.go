package parser

import (
	"context"
	"io/fs"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/unalkalkan/bookreader/internal/cache"
	"github.com/unalkalkan/bookreader/pkg/types"
)

// Service turns book files into documents, memoizing successful parses in a
// cache keyed by path and format
type Service struct {
	fs      afero.Fs
	cache   cache.Cache
	factory Factory
	group   singleflight.Group
	timeout time.Duration
	metrics *Metrics
	logger  *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithFactory replaces the default parser factory
func WithFactory(f Factory) Option {
	return func(s *Service) { s.factory = f }
}

// WithTimeout bounds a single extraction. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithMetrics records parses and cache lookups
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a parser service reading from fsys and caching into c
func NewService(fsys afero.Fs, c cache.Cache, opts ...Option) *Service {
	s := &Service{
		fs:      fsys,
		cache:   c,
		factory: NewFactory(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse returns the document for path. A cached document is returned without
// touching the filesystem. Concurrent misses for the same key share one
// extraction, which outlives any single caller and is bounded only by the
// service timeout. Errors are always *ParseError.
func (s *Service) Parse(ctx context.Context, path string, format types.Format) (*types.Document, error) {
	key := cache.BuildKey(path, format)
	if doc, ok := s.cache.Get(key); ok {
		s.metrics.cacheLookup(true)
		return doc, nil
	}
	s.metrics.cacheLookup(false)

	if err := ctx.Err(); err != nil {
		return nil, newParseError(ErrCorrupt, path, format, err)
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		doc, err := s.extract(context.WithoutCancel(ctx), path, format)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, doc)
		return doc, nil
	})

	select {
	case <-ctx.Done():
		s.logger.Debug("caller left in-flight parse", zap.String("path", path))
		return nil, newParseError(ErrCorrupt, path, format, ctx.Err())
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("shared in-flight parse", zap.String("path", path))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*types.Document), nil
	}
}

// Document is Parse for readers: failures come back as a placeholder
// document describing the problem
func (s *Service) Document(ctx context.Context, path string, format types.Format) *types.Document {
	doc, err := s.Parse(ctx, path, format)
	if err != nil {
		s.logger.Warn("showing placeholder for unreadable book",
			zap.String("path", path),
			zap.String("format", string(format)),
			zap.Error(err))
		return Placeholder(err)
	}
	return doc
}

// Forget drops the cached document for path so the next Parse re-reads it
func (s *Service) Forget(path string, format types.Format) {
	s.cache.Remove(cache.BuildKey(path, format))
}

// Metadata reads title, author and description from the file
func (s *Service) Metadata(ctx context.Context, path string, format types.Format) (types.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return types.Metadata{}, err
	}
	f, info, err := s.open(path, format)
	if err != nil {
		return types.Metadata{}, err
	}
	defer f.Close()

	meta, err := readMetadata(Source{Name: path, Reader: f, Size: info.Size()}, format)
	if err != nil {
		return types.Metadata{}, newParseError(ErrCorrupt, path, format, err)
	}
	return meta, nil
}

func (s *Service) extract(ctx context.Context, path string, format types.Format) (*types.Document, error) {
	start := time.Now()

	doc, err := s.extractFile(ctx, path, format)
	elapsed := time.Since(start)
	s.metrics.parsed(format, elapsed, err)

	if err != nil {
		s.logger.Info("parse failed",
			zap.String("path", path),
			zap.String("format", string(format)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	s.logger.Debug("parsed book",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("chapters", len(doc.Chapters)),
		zap.Duration("elapsed", elapsed))
	return doc, nil
}

func (s *Service) extractFile(ctx context.Context, path string, format types.Format) (*types.Document, error) {
	f, info, err := s.open(path, format)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := s.factory.GetParser(format)
	if err != nil {
		return nil, annotate(err, path, format)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	doc, err := p.Parse(ctx, Source{Name: path, Reader: f, Size: info.Size()})
	if err != nil {
		return nil, annotate(err, path, format)
	}
	return doc, nil
}

// open stats and opens path. Missing files and directories are ErrNotFound.
func (s *Service) open(path string, format types.Format) (afero.File, fs.FileInfo, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, newParseError(ErrNotFound, path, format, nil)
		}
		return nil, nil, newParseError(ErrCorrupt, path, format, err)
	}
	if info.IsDir() {
		return nil, nil, newParseError(ErrNotFound, path, format, errors.New("path is a directory"))
	}

	f, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, newParseError(ErrNotFound, path, format, nil)
		}
		return nil, nil, newParseError(ErrCorrupt, path, format, err)
	}
	return f, info, nil
}

// annotate fills in the path and format of parser errors. Anything else,
// including context cancellation, is reported as ErrCorrupt with the cause
// kept for errors.Is.
func annotate(err error, path string, format types.Format) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Path = path
		pe.Format = format
		return pe
	}
	return newParseError(ErrCorrupt, path, format, err)
}
