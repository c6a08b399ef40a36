package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/unalkalkan/bookreader/internal/app"
	"github.com/unalkalkan/bookreader/internal/config"
	"github.com/unalkalkan/bookreader/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Filesystem holding book files. Set before calling Run().
	Fs afero.Fs

	App    *app.App
	Logger *zap.Logger
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Fs: afero.NewOsFs(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Logger != nil {
		_ = m.Logger.Sync()
	}
	if m.App != nil {
		return m.App.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Fs:     m.Fs,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("bookreader"),
		kong.Description("Manage and read a personal e-book library."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'bookreader --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: point --config or BR_CONFIG at a configuration file")
		return err
	}
	cfg.Log.Level = cli.LogLevel
	cfg.Log.Development = true

	m.Logger, err = logging.New(cfg.Log)
	if err != nil {
		return err
	}

	m.App, err = app.New(ctx, cfg, m.Fs, m.Logger)
	if err != nil {
		return err
	}
	defer m.Close()

	deps.Library = m.App.Library
	deps.Parser = m.App.Parser
	deps.Export = m.App.Export

	return kongCtx.Run(deps)
}
