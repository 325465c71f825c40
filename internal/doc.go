// Package internal is the HTTP core of the service: the App that owns the chi
// router, the request Context handed to handlers, typed HTTP errors and the
// graceful runtime.
//
// # Application Structure
//
// Create an application with New and configure it using options:
//
//	app := internal.New(
//	    internal.WithHandlers(handlers.NewContact(dispatcher)),
//	    internal.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    internal.WithErrorHandler(handlers.ErrorHandler),
//	    internal.WithHealthChecks(internal.WithReadinessCheck("dispatcher", dispatcher.Healthcheck)),
//	)
//	err := app.Run(":8080", internal.Logger(log))
//
// # Handler Pattern
//
// Handlers implement the Handler interface and declare routes:
//
//	type ContactHandler struct {
//	    dispatcher *contact.Dispatcher
//	}
//
//	func (h *ContactHandler) Routes(r internal.Router) {
//	    r.POST("/api/contact", h.submit)
//	}
//
// Handlers receive dependencies via constructor injection. A handler returns
// an error instead of writing one; the App passes it to the configured
// ErrorHandler unless a response was already written.
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context. Deadline, Done, Err and Value
// delegate to the request context.
//
// # Request Bodies
//
// BindJSON enforces a JSON content type and the App's body limit, and reports
// failures with ErrUnsupportedMediaType, ErrBodyTooLarge or ErrMalformedJSON so
// handlers can map each to its own response.
//
// # Graceful Shutdown
//
// Run listens, runs startup hooks, serves until SIGINT/SIGTERM (or until the
// context given with WithContext is done), then shuts the server down and runs
// shutdown hooks in registration order under one shared timeout.
package internal
