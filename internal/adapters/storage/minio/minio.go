package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"tender-docs/internal/config"
	"tender-docs/internal/core/domain"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter, creating the bucket when missing
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("bucket created", slog.String("bucket", cfg.BucketName))
	}

	return &Adapter{client: client, config: cfg, logger: logger}, nil
}

// Put stores an object of known size
func (a *Adapter) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := a.client.PutObject(ctx, a.config.BucketName, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	if info.Size != size {
		return fmt.Errorf("failed to put object: stored %d bytes, expected %d", info.Size, size)
	}

	a.logger.Debug("object stored",
		slog.String("key", key),
		slog.Int64("size", info.Size))
	return nil
}

// Get opens an object for reading. The caller closes the reader.
func (a *Adapter) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := a.client.GetObject(ctx, a.config.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, a.mapError("failed to get object", err)
	}

	// GetObject is lazy; Stat surfaces a missing key before the body is handed out
	if _, err := object.Stat(); err != nil {
		_ = object.Close()
		return nil, a.mapError("failed to get object", err)
	}
	return object, nil
}

// Delete removes an object. Deleting a missing key succeeds.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	err := a.client.RemoveObject(ctx, a.config.BucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		mapped := a.mapError("failed to delete object", err)
		if errors.Is(mapped, domain.ErrObjectNotFound) {
			return nil
		}
		return mapped
	}

	a.logger.Info("object deleted",
		slog.String("key", key),
		slog.String("bucket", a.config.BucketName))

	return nil
}

// Exists reports whether an object is stored under key
func (a *Adapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.Stat(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Stat returns the metadata of an object
func (a *Adapter) Stat(ctx context.Context, key string) (*domain.ObjectInfo, error) {
	info, err := a.client.StatObject(ctx, a.config.BucketName, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, a.mapError("failed to get object info", err)
	}
	return &domain.ObjectInfo{
		Key:         info.Key,
		SizeBytes:   info.Size,
		ContentType: info.ContentType,
		ETag:        strings.Trim(info.ETag, "\""),
	}, nil
}

func (a *Adapter) mapError(msg string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || (resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket") {
		return fmt.Errorf("%s: %w", msg, domain.ErrObjectNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
