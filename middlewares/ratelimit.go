package middlewares

import (
	"math"
	"strconv"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"

	"github.com/dmitrymomot/folio/internal"
)

// DefaultIPLookups identifies clients by the connection address only.
var DefaultIPLookups = []string{"RemoteAddr"}

// ProxyIPLookups trusts proxy headers first. Use only behind a proxy that
// overwrites them.
var ProxyIPLookups = []string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"}

// RateLimitConfig configures the rate limit middleware.
type RateLimitConfig struct {
	IPLookups []string      // Sources for the client IP, in order
	TTL       time.Duration // How long an idle client's bucket is kept
}

// RateLimitOption configures RateLimitConfig.
type RateLimitOption func(*RateLimitConfig)

// WithRateLimitIPLookups sets where the client IP is read from.
func WithRateLimitIPLookups(lookups ...string) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if len(lookups) > 0 {
			cfg.IPLookups = lookups
		}
	}
}

// WithRateLimitTTL sets how long per-client state is kept.
func WithRateLimitTTL(ttl time.Duration) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if ttl > 0 {
			cfg.TTL = ttl
		}
	}
}

// RateLimit returns middleware that allows perMinute requests per client IP,
// with bursts up to perMinute. A zero or negative limit disables it.
// Rejected requests get a Retry-After header and a *RateLimitError.
func RateLimit(perMinute int, opts ...RateLimitOption) internal.Middleware {
	if perMinute <= 0 {
		return func(next internal.HandlerFunc) internal.HandlerFunc { return next }
	}

	cfg := &RateLimitConfig{
		IPLookups: DefaultIPLookups,
		TTL:       time.Hour,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	lmt := tollbooth.NewLimiter(float64(perMinute)/60.0, &limiter.ExpirableOptions{DefaultExpirationTTL: cfg.TTL})
	lmt.SetBurst(perMinute)
	lmt.SetIPLookups(cfg.IPLookups)

	retryAfter := strconv.Itoa(int(math.Ceil(60.0 / float64(perMinute))))

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if httpErr := tollbooth.LimitByRequest(lmt, c.Response(), c.Request()); httpErr != nil {
				c.SetHeader("Retry-After", retryAfter)
				c.LogWarn("rate limit exceeded", "remote_addr", c.Request().RemoteAddr)
				return &RateLimitError{Limit: perMinute, Message: httpErr.Message}
			}
			return next(c)
		}
	}
}
