package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/unalkalkan/bookreader/internal/api"
	"github.com/unalkalkan/bookreader/internal/app"
	"github.com/unalkalkan/bookreader/internal/config"
	"github.com/unalkalkan/bookreader/internal/health"
	"github.com/unalkalkan/bookreader/internal/logging"
	"github.com/unalkalkan/bookreader/internal/parser"
	"github.com/unalkalkan/bookreader/pkg/types"
)

const version = "0.3.0"

// serverCLI defines the server flags
type serverCLI struct {
	Config   string           `short:"c" type:"path" env:"BR_CONFIG" help:"Path to configuration file (defaults and BR_* environment when empty)"`
	LogLevel string           `name:"log-level" help:"Override the configured log level"`
	Version  kong.VersionFlag `help:"Print version and exit"`
}

func main() {
	var cli serverCLI
	kong.Parse(&cli,
		kong.Name("bookreader-server"),
		kong.Description("HTTP API for a personal e-book library."),
		kong.Vars{"version": version},
	)

	if err := run(cli); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cli serverCLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting bookreader server",
		zap.String("version", version),
		zap.String("config", cli.Config))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, afero.NewOsFs(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	healthHandler := health.NewHandler(version, logger.Named("health"))
	a.RegisterHealthChecks(healthHandler)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", healthHandler.LivenessHandler())
	mux.HandleFunc("GET /health/ready", healthHandler.ReadinessHandler())
	mux.HandleFunc("GET /health", healthHandler.HealthHandler())
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry}))
	mux.HandleFunc("GET /api/v1/info", infoHandler(version, cfg))

	api.NewBookHandler(a.Library, cfg.Library.MaxFileSize, logger.Named("api")).Routes(mux)
	api.NewExportHandler(a.Stream, a.Export, logger.Named("api")).Routes(mux)
	api.NewFormatsHandler(parser.NewFactory()).Routes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// infoHandler returns basic server information
func infoHandler(version string, cfg *types.Config) http.HandlerFunc {
	info := map[string]any{
		"version":       version,
		"store":         cfg.Library.Store,
		"storage":       cfg.Storage.Adapter,
		"max_file_size": cfg.Library.MaxFileSize,
		"formats":       types.Formats(),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info)
	}
}
