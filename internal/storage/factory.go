package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// NewAdapter creates a new storage adapter based on the configuration
func NewAdapter(ctx context.Context, cfg types.StorageConfig) (Adapter, error) {
	switch cfg.Adapter {
	case "local":
		return NewLocalAdapter(cfg.Local.BasePath)
	case "memory":
		return NewMemoryAdapter(), nil
	case "s3":
		return NewS3Adapter(ctx, S3Options{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UseSSL:          cfg.S3.UseSSL,
		})
	default:
		return nil, errors.Errorf("unknown storage adapter: %s", cfg.Adapter)
	}
}
