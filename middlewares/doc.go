// Package middlewares provides the HTTP middleware stack of the service.
//
// # Request ID
//
// RequestID assigns each request an ID, reusing one from an upstream proxy
// when present. RequestIDExtractor adds it to every log record:
//
//	log, flush := logger.New(cfg.Log, middlewares.RequestIDExtractor())
//	app := internal.New(
//	    internal.WithCustomLogger(log),
//	    internal.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns a panic into a *PanicError returned to the App's ErrorHandler.
//
// # Request Logger
//
// RequestLogger writes one record per request with method, path, status,
// size and duration.
//
// # CORS
//
// CORS answers preflight requests and decorates responses for allowed origins.
//
//	middlewares.CORS(middlewares.WithAllowOrigins("https://example.com"))
//
// # Rate Limit
//
// RateLimit caps requests per client IP with a token bucket. Rejected requests
// return a *RateLimitError so the ErrorHandler decides the response body.
//
//	r.POST("/api/contact", h.submit, middlewares.RateLimit(10))
package middlewares
