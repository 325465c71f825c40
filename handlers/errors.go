package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/folio/internal"
	"github.com/dmitrymomot/folio/middlewares"
)

// ErrorHandler renders errors as a JSON Response.
// HTTPError keeps its code and message, rate limiting maps to 429, and
// anything else becomes a generic 500 that never leaks the cause.
func ErrorHandler(c internal.Context, err error) error {
	code := http.StatusInternalServerError
	resp := Response{Message: MsgGeneric}

	switch {
	case middlewares.IsRateLimitError(err):
		code = http.StatusTooManyRequests
		resp.Message = MsgTooManyRequests
	case middlewares.IsPanicError(err):
		// Logged with the stack by Recover.
	default:
		if httpErr := internal.AsHTTPError(err); httpErr != nil {
			code = httpErr.Code
			resp.Message = httpErr.Message
			if fields, ok := httpErr.Details.(map[string]string); ok {
				resp.Errors = fields
			}
		}
		if code >= http.StatusInternalServerError {
			c.LogError("request failed", slog.Int("status", code), slog.Any("error", err))
		}
	}

	return c.JSON(code, resp)
}

// NotFound renders unknown routes as JSON.
func NotFound(c internal.Context) error {
	return internal.ErrNotFound(MsgNotFound)
}

// MethodNotAllowed renders unsupported methods as JSON.
func MethodNotAllowed(c internal.Context) error {
	return internal.ErrMethodNotAllowed(MsgMethodNotAllowed)
}
