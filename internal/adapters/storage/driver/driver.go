package driver

import (
	"context"
	"fmt"
	"log/slog"
	"tender-docs/internal/adapters/storage/minio"
	"tender-docs/internal/adapters/storage/retry"
	"tender-docs/internal/adapters/storage/s3"
	"tender-docs/internal/config"
	"tender-docs/internal/core/port"
)

// Open connects the object storage selected by STORAGE_DRIVER and wraps it
// with bounded retries.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (port.ObjectStorage, error) {
	var (
		storage port.ObjectStorage
		err     error
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMinio:
		storage, err = minio.NewAdapter(ctx, cfg.Minio, logger)
	case config.StorageDriverS3:
		storage, err = s3.NewAdapter(ctx, cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}
	return retry.New(storage, cfg.Retry, logger), nil
}
