package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g. BR_SERVER_PORT
const EnvPrefix = "BR_"

// Load reads the configuration file on top of the defaults and applies
// environment overrides. An empty path loads defaults and environment only.
func Load(configPath string) (*types.Config, error) {
	cfg := GetDefault()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Wrap(err, "apply environment overrides")
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return cfg, nil
}

// Validate checks the configuration and fills in tunables left at zero
func Validate(cfg *types.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Storage.Adapter {
	case "local":
		if cfg.Storage.Local.BasePath == "" {
			return errors.New("local storage base_path is required")
		}
		if !filepath.IsAbs(cfg.Storage.Local.BasePath) {
			return errors.Errorf("local storage base_path must be absolute: %s", cfg.Storage.Local.BasePath)
		}
	case "s3":
		if cfg.Storage.S3.Bucket == "" {
			return errors.New("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return errors.New("s3 region is required")
		}
	case "memory":
	default:
		return errors.Errorf("invalid storage adapter: %s (must be 'local', 's3' or 'memory')", cfg.Storage.Adapter)
	}

	if cfg.Library.BooksDir == "" {
		return errors.New("library books_dir is required")
	}
	// stored file paths and cache keys are absolute
	booksDir, err := filepath.Abs(cfg.Library.BooksDir)
	if err != nil {
		return errors.Wrapf(err, "resolve books_dir %s", cfg.Library.BooksDir)
	}
	cfg.Library.BooksDir = booksDir
	switch cfg.Library.Store {
	case "storage":
	case "sqlite":
		if cfg.Library.SQLitePath == "" {
			return errors.New("library sqlite_path is required for the sqlite store")
		}
	default:
		return errors.Errorf("invalid library store: %s (must be 'storage' or 'sqlite')", cfg.Library.Store)
	}
	if cfg.Library.MaxFileSize <= 0 {
		cfg.Library.MaxFileSize = 100 << 20
	}
	if cfg.Library.ImportConcurrency <= 0 {
		cfg.Library.ImportConcurrency = 4
	}

	if cfg.Parser.CacheSize < 0 {
		return errors.Errorf("invalid parser cache_size: %d", cfg.Parser.CacheSize)
	}
	if cfg.Parser.Timeout < 0 {
		return errors.Errorf("invalid parser timeout: %d", cfg.Parser.Timeout)
	}
	return nil
}

// GetDefault returns a default configuration
func GetDefault() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 60,
		},
		Storage: types.StorageConfig{
			Adapter: "local",
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/bookreader/records",
			},
		},
		Library: types.LibraryConfig{
			BooksDir:          "/var/lib/bookreader/books",
			Store:             "storage",
			SQLitePath:        "/var/lib/bookreader/library.db",
			MaxFileSize:       100 << 20,
			ImportConcurrency: 4,
		},
		Parser: types.ParserConfig{
			CacheSize: 0,
			Timeout:   60,
		},
		Log: types.LogConfig{
			Level: "info",
		},
	}
}
