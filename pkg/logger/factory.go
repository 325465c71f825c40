package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates the application logger from cfg.
// The second return value flushes pending Sentry events; call it on shutdown.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, func()) {
	return newWithWriter(os.Stdout, cfg, extractors...)
}

func newWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) (*slog.Logger, func()) {
	base := newBaseHandler(w, cfg)

	sentryHandler, flush, err := newSentryHandler(cfg.Sentry)
	if err != nil {
		// Graceful degradation: keep logging to stdout if Sentry init fails
		slog.New(base).Error("failed to initialize sentry", slog.String("error", err.Error()))
	}
	if sentryHandler == nil {
		return slog.New(NewLogHandlerDecorator(base, extractors...)), flush
	}

	return slog.New(NewLogHandlerDecorator(newMultiHandler(base, sentryHandler), extractors...)), flush
}

func newBaseHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
