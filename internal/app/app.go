// Package app wires the library services from a configuration.
package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/unalkalkan/bookreader/internal/book"
	"github.com/unalkalkan/bookreader/internal/cache"
	"github.com/unalkalkan/bookreader/internal/health"
	"github.com/unalkalkan/bookreader/internal/library"
	"github.com/unalkalkan/bookreader/internal/packaging"
	"github.com/unalkalkan/bookreader/internal/parser"
	"github.com/unalkalkan/bookreader/internal/sqlite"
	"github.com/unalkalkan/bookreader/internal/storage"
	"github.com/unalkalkan/bookreader/internal/streaming"
	"github.com/unalkalkan/bookreader/pkg/types"
)

// App holds the services built from one configuration
type App struct {
	Config   *types.Config
	Fs       afero.Fs
	Cache    cache.Cache
	Parser   *parser.Service
	Storage  storage.Adapter
	DB       *sqlite.DB
	Repo     book.Repository
	Library  *library.Service
	Stream   *streaming.Service
	Export   *packaging.Service
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

// New builds the services. Book files are read from and written to fsys,
// which is the host filesystem in production.
func New(ctx context.Context, cfg *types.Config, fsys afero.Fs, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		Config:   cfg,
		Fs:       fsys,
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.Cache = cache.NewBounded(cfg.Parser.CacheSize)
	promauto.With(a.Registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "bookreader",
		Name:      "content_cache_entries",
		Help:      "Parsed documents held in the content cache",
	}, func() float64 { return float64(a.Cache.Len()) })

	a.Parser = parser.NewService(fsys, a.Cache,
		parser.WithTimeout(time.Duration(cfg.Parser.Timeout)*time.Second),
		parser.WithMetrics(parser.NewMetrics(a.Registry)),
		parser.WithLogger(logger.Named("parser")))

	var err error
	switch cfg.Library.Store {
	case "sqlite":
		a.DB = sqlite.NewDB(cfg.Library.SQLitePath)
		if err := a.DB.Open(); err != nil {
			return nil, errors.Wrapf(err, "open %s", cfg.Library.SQLitePath)
		}
		a.Repo = sqlite.NewBookRepository(a.DB)
	default:
		a.Storage, err = storage.NewAdapter(ctx, cfg.Storage)
		if err != nil {
			return nil, errors.Wrap(err, "create storage adapter")
		}
		a.Repo = book.NewRepository(a.Storage)
	}

	a.Library = library.NewService(fsys, cfg.Library.BooksDir, a.Repo, a.Parser,
		library.WithMaxFileSize(cfg.Library.MaxFileSize),
		library.WithConcurrency(cfg.Library.ImportConcurrency),
		library.WithLogger(logger.Named("library")))
	a.Stream = streaming.NewService(a.Library)
	a.Export = packaging.NewService(a.Repo, fsys, a.Parser,
		packaging.WithLogger(logger.Named("packaging")))

	logger.Debug("services ready",
		zap.String("store", cfg.Library.Store),
		zap.String("books_dir", cfg.Library.BooksDir),
		zap.Int("cache_size", cfg.Parser.CacheSize))
	return a, nil
}

// RegisterHealthChecks adds a check per backing service to h
func (a *App) RegisterHealthChecks(h *health.Handler) {
	h.Register("books_dir", health.Directory(a.Fs, a.Config.Library.BooksDir))
	if a.DB != nil {
		h.Register("database", health.Ping(a.DB.Ping))
	}
	if a.Storage != nil {
		h.Register("storage", health.Ping(func(ctx context.Context) error {
			_, err := a.Storage.Exists(ctx, ".healthcheck")
			return err
		}))
	}
}

// Close releases the store
func (a *App) Close() error {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return err
		}
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
