// Command folio serves the contact form endpoint of a portfolio site and
// forwards submissions to Resend.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/folio/contact"
	"github.com/dmitrymomot/folio/handlers"
	"github.com/dmitrymomot/folio/internal"
	"github.com/dmitrymomot/folio/middlewares"
	"github.com/dmitrymomot/folio/pkg/logger"
	"github.com/dmitrymomot/folio/pkg/mailer"
	"github.com/dmitrymomot/folio/pkg/mailer/resend"
)

// writeTimeoutMargin covers reading the request and writing the response
// around a synchronous delivery.
const writeTimeoutMargin = 10 * time.Second

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log, flush := logger.New(cfg.Log, middlewares.RequestIDExtractor())

	if err := run(cfg, log); err != nil {
		log.Error("application error", "error", err)
		flush()
		os.Exit(1)
	}
	flush()
}

func run(cfg Config, log *slog.Logger) error {
	sender, err := resend.New(cfg.Resend)
	if err != nil {
		return err
	}
	m := mailer.New(sender, mailer.NewRenderer(contact.Templates()), cfg.Mailer)

	policy := cfg.Contact.Policy()
	deliverer, err := contact.NewDeliverer(m, policy, contact.WithLogger(log))
	if err != nil {
		return err
	}

	mode, err := contact.ParseMode(cfg.Contact.Mode)
	if err != nil {
		return err
	}
	dispatcher := contact.NewDispatcher(deliverer, mode,
		contact.WithMaxInFlight(cfg.Contact.MaxInFlight),
		contact.WithDispatcherLogger(log),
	)

	app := newApp(cfg, log, dispatcher)

	runOpts := []internal.RunOption{
		internal.Logger(log),
		internal.ShutdownTimeout(shutdownTimeout(cfg.HTTP.ShutdownTimeout, policy)),
		internal.WriteTimeout(writeTimeout(policy, mode)),
		internal.ShutdownHook(dispatcher.Shutdown),
	}

	if cfg.Contact.CanarySchedule != "" {
		canary, err := contact.NewCanary(cfg.Contact.CanarySchedule, deliverer, cfg.Contact.TestRecipient(), log)
		if err != nil {
			return err
		}
		runOpts = append(runOpts,
			internal.StartupHook(canary.Start),
			internal.ShutdownHook(canary.Stop),
		)
	}

	log.Info("contact delivery configured",
		slog.String("mode", string(mode)),
		slog.Int("senders", len(policy.Senders)),
		slog.Int("max_attempts", policy.MaxAttempts),
		slog.Duration("attempt_timeout", policy.AttemptTimeout),
	)

	return app.Run(cfg.HTTP.Addr, runOpts...)
}

// newApp assembles the HTTP surface around dispatcher.
func newApp(cfg Config, log *slog.Logger, dispatcher *contact.Dispatcher) *internal.App {
	hs := []internal.Handler{
		handlers.NewContactHandler(dispatcher,
			middlewares.RateLimit(cfg.HTTP.RateLimitPerMinute,
				middlewares.WithRateLimitIPLookups(cfg.HTTP.IPLookups()...),
			),
		),
	}
	if cfg.Contact.TestEmailEnabled {
		hs = append(hs, handlers.NewTestEmailHandler(dispatcher, cfg.Contact.TestRecipient()))
	}

	return internal.New(
		internal.WithCustomLogger(log),
		internal.WithBodyLimit(cfg.HTTP.BodyLimit),
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.RequestLogger(),
			middlewares.Recover(),
			middlewares.CORS(middlewares.WithAllowOrigins(cfg.HTTP.AllowedOrigins()...)),
		),
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithNotFoundHandler(handlers.NotFound),
		internal.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		internal.WithHealthChecks(
			internal.WithReadinessCheck("dispatcher", dispatcher.Healthcheck),
		),
		internal.WithHandlers(hs...),
	)
}

// writeTimeout leaves room for the slowest synchronous delivery.
func writeTimeout(p contact.Policy, mode contact.Mode) time.Duration {
	if mode == contact.ModeAsync {
		return 0
	}
	return p.WorstCase() + writeTimeoutMargin
}

// shutdownTimeout is the configured value raised to the slowest delivery, so a
// shutdown never cuts off a request or a queued job mid-retry. Async mode
// needs it too: Dispatcher.Shutdown waits for accepted jobs to finish.
func shutdownTimeout(configured time.Duration, p contact.Policy) time.Duration {
	return max(configured, p.WorstCase()+writeTimeoutMargin)
}
