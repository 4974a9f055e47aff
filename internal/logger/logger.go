package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options configures the root logger
type Options struct {
	// Dev selects a debug level text handler, otherwise json at info level
	Dev bool
	// Level overrides the default level (debug, info, warn, error)
	Level string
	// SentryDSN enables error forwarding to Sentry when set
	SentryDSN string
	// Output defaults to stdout
	Output io.Writer
}

// New builds the root logger.
// Errors are additionally sent to Sentry when a DSN is configured.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := slog.LevelInfo
	if opts.Dev {
		level = slog.LevelDebug
	}
	if opts.Level != "" {
		level = parseLevel(opts.Level, level)
	}

	var handlers []slog.Handler
	handlerOpts := &slog.HandlerOptions{Level: level}
	if opts.Dev {
		handlers = append(handlers, slog.NewTextHandler(out, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(out, handlerOpts))
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              opts.SentryDSN,
			TracesSampleRate: 0.2,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		} else {
			slog.New(handlers[0]).Warn("sentry disabled", "error", err)
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	return slog.New(handler)
}

// Flush waits for buffered Sentry events
func Flush() {
	sentry.Flush(2 * time.Second)
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
