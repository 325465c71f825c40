package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/folio/contact"
	"github.com/dmitrymomot/folio/middlewares"
	"github.com/dmitrymomot/folio/pkg/logger"
	"github.com/dmitrymomot/folio/pkg/mailer"
	"github.com/dmitrymomot/folio/pkg/mailer/resend"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Log     logger.Config
	Mailer  mailer.Config
	Resend  resend.Config
	HTTP    HTTPConfig
	Contact ContactConfig
}

// HTTPConfig configures the HTTP server and its middleware.
type HTTPConfig struct {
	Addr               string        `env:"HTTP_ADDR" envDefault:":8080"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	BodyLimit          int64         `env:"HTTP_BODY_LIMIT" envDefault:"65536"`
	ShutdownTimeout    time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"` // floor; raised to the worst-case delivery time
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	TrustProxyHeaders  bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// ContactConfig configures delivery of contact submissions.
type ContactConfig struct {
	To               string        `env:"CONTACT_TO,required"`
	From             string        `env:"CONTACT_FROM,required"`
	Mode             string        `env:"DELIVERY_MODE" envDefault:"sync"`
	TestEmailTo      string        `env:"TEST_EMAIL_TO"`
	CanarySchedule   string        `env:"CANARY_SCHEDULE"`
	FallbackFrom     []string      `env:"CONTACT_FALLBACK_FROM" envSeparator:"," envDefault:"onboarding@resend.dev"`
	AttemptTimeout   time.Duration `env:"DELIVERY_ATTEMPT_TIMEOUT" envDefault:"15s"`
	MaxAttempts      int           `env:"DELIVERY_MAX_ATTEMPTS" envDefault:"3"`
	MaxInFlight      int           `env:"DELIVERY_MAX_IN_FLIGHT" envDefault:"8"`
	TestEmailEnabled bool          `env:"TEST_EMAIL_ENABLED" envDefault:"false"`
}

// Policy builds the delivery policy: the primary sender first, then each
// non-empty fallback in order.
func (c ContactConfig) Policy() contact.Policy {
	senders := []contact.Identity{{Name: "primary", From: strings.TrimSpace(c.From)}}
	for _, from := range c.FallbackFrom {
		from = strings.TrimSpace(from)
		if from == "" {
			continue
		}
		senders = append(senders, contact.Identity{
			Name: "fallback-" + strconv.Itoa(len(senders)),
			From: from,
		})
	}

	p := contact.DefaultPolicy(strings.TrimSpace(c.To), senders...)
	if c.MaxAttempts > 0 {
		p.MaxAttempts = c.MaxAttempts
	}
	if c.AttemptTimeout > 0 {
		p.AttemptTimeout = c.AttemptTimeout
	}
	return p
}

// TestRecipient is where test and canary emails go.
func (c ContactConfig) TestRecipient() string {
	if c.TestEmailTo != "" {
		return c.TestEmailTo
	}
	return c.To
}

// AllowedOrigins returns the trimmed, non-empty CORS origins.
func (c HTTPConfig) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.CORSAllowedOrigins))
	for _, o := range c.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// IPLookups returns where the rate limiter reads the client IP from.
func (c HTTPConfig) IPLookups() []string {
	if c.TrustProxyHeaders {
		return middlewares.ProxyIPLookups
	}
	return middlewares.DefaultIPLookups
}

// loadConfig reads an optional .env file and parses the environment.
func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Resend.APIKey == "" {
		return Config{}, errors.New("parse config: RESEND_API_KEY is required")
	}
	if _, err := contact.ParseMode(cfg.Contact.Mode); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
