// Package handlers exposes the contact pipeline over HTTP.
//
// ContactHandler serves POST /api/contact, TestEmailHandler serves
// GET /api/test-email, and ErrorHandler renders every error returned by a
// handler or middleware as the JSON envelope used by the presentation layer:
//
//	{"success": false, "message": "All fields are required.", "errors": {"name": "is required"}}
//
// Wire them into the app:
//
//	app := internal.New(
//	    internal.WithErrorHandler(handlers.ErrorHandler),
//	    internal.WithNotFoundHandler(handlers.NotFound),
//	    internal.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
//	    internal.WithHandlers(handlers.NewContactHandler(dispatcher, middlewares.RateLimit(10))),
//	)
package handlers
