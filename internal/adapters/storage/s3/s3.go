package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"tender-docs/internal/config"
	"tender-docs/internal/core/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Adapter stores objects in AWS S3 or any S3 compatible service
type Adapter struct {
	client *s3.Client
	bucket string
	logger *slog.Logger
}

// NewAdapter returns Adapter, creating the bucket when missing
func NewAdapter(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*Adapter, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	a := &Adapter{client: client, bucket: cfg.Bucket, logger: logger}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}

	logger.Info("s3 storage ready", "bucket", cfg.Bucket, "region", cfg.Region, "endpoint", cfg.Endpoint)
	return a, nil
}

func (a *Adapter) ensureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", a.bucket, err)
	}

	a.logger.Info("bucket created", "bucket", a.bucket)
	return nil
}

// Put stores an object of known size
func (a *Adapter) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}

	a.logger.Debug("object stored", "key", key, "size", size)
	return nil
}

// Get opens an object for reading. The caller closes the reader.
func (a *Adapter) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError("failed to get object", err)
	}
	return out.Body, nil
}

// Delete removes an object. Deleting a missing key succeeds.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		mapped := mapError("failed to delete object", err)
		if errors.Is(mapped, domain.ErrObjectNotFound) {
			return nil
		}
		return mapped
	}

	a.logger.Info("object deleted", "key", key, "bucket", a.bucket)
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
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError("failed to get object info", err)
	}
	return &domain.ObjectInfo{
		Key:         key,
		SizeBytes:   aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
		ETag:        strings.Trim(aws.ToString(out.ETag), "\""),
	}, nil
}

func mapError(msg string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s: %w", msg, domain.ErrObjectNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	// HEAD responses carry no body, only the code survives
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
