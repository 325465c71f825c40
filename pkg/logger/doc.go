// Package logger builds the service's structured logger on top of log/slog.
//
// Every entry is JSON (or text, for local development) on stdout. Request-scoped
// values such as the request ID are injected by context extractors, so call sites
// only have to pass a context:
//
//	log, flush := logger.New(cfg, middlewares.RequestIDExtractor())
//	defer flush()
//
//	log.InfoContext(ctx, "contact submission received", slog.String("submission_id", id))
//	// {"level":"INFO","msg":"contact submission received","submission_id":"...","request_id":"..."}
//
// # Sentry
//
// When Config.Sentry.DSN is set, records are also forwarded to Sentry: error-level
// records become Sentry issues, warnings are kept as searchable logs. Delivery
// failures of contact submissions are logged at error level, which is how an
// operator learns about them. Without a DSN the logger writes to stdout only,
// so the same wiring works in development.
//
// The returned flush function drains buffered Sentry events and should run during
// shutdown. It is a no-op when Sentry is disabled.
package logger
