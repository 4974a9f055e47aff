package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"tender-docs/internal/config"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Storage retries transient failures of the wrapped storage with
// exponential backoff. Missing objects and cancelled contexts are final.
type Storage struct {
	next   port.ObjectStorage
	cfg    config.RetryConfig
	logger *slog.Logger
}

// New wraps next. MaxAttempts counts the first try; values below 2 disable retries.
func New(next port.ObjectStorage, cfg config.RetryConfig, logger *slog.Logger) *Storage {
	return &Storage{next: next, cfg: cfg, logger: logger}
}

func (s *Storage) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if s.cfg.InitialInterval > 0 {
		b.InitialInterval = s.cfg.InitialInterval
	}
	if s.cfg.MaxInterval > 0 {
		b.MaxInterval = s.cfg.MaxInterval
	}
	// attempts bound the retries, not elapsed time
	b.MaxElapsedTime = 0

	retries := s.cfg.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (s *Storage) do(ctx context.Context, op string, key string, fn func() error) error {
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrObjectNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}, s.policy(ctx), func(err error, wait time.Duration) {
		s.logger.Warn("storage operation failed, retrying",
			"op", op, "key", key, "attempt", attempt, "wait", wait.String(), "error", err)
	})
}

// Put retries only when the body can be rewound
func (s *Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	seeker, ok := body.(io.Seeker)
	if !ok {
		return s.next.Put(ctx, key, body, size, contentType)
	}

	first := true
	return s.do(ctx, "put", key, func() error {
		if !first {
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return backoff.Permanent(err)
			}
		}
		first = false
		return s.next.Put(ctx, key, body, size, contentType)
	})
}

func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := s.do(ctx, "get", key, func() error {
		var err error
		body, err = s.next.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.do(ctx, "delete", key, func() error {
		return s.next.Delete(ctx, key)
	})
}

func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.do(ctx, "exists", key, func() error {
		var err error
		exists, err = s.next.Exists(ctx, key)
		return err
	})
	return exists, err
}

func (s *Storage) Stat(ctx context.Context, key string) (*domain.ObjectInfo, error) {
	var info *domain.ObjectInfo
	err := s.do(ctx, "stat", key, func() error {
		var err error
		info, err = s.next.Stat(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}
