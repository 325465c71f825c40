package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

const sentryFlushTimeout = 2 * time.Second

// newSentryHandler initializes the Sentry SDK and returns a slog handler for it.
// Returns a nil handler when no DSN is configured.
func newSentryHandler(cfg SentryConfig) (slog.Handler, func(), error) {
	noop := func() {}
	if cfg.DSN == "" {
		return nil, noop, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		return nil, noop, err
	}

	// Errors create issues; warnings are stored as logs unless MinLevel is error.
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if ParseLevel(cfg.MinLevel) == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	h := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return h, func() { sentry.Flush(sentryFlushTimeout) }, nil
}
