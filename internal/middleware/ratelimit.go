package middleware

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/lexfrei/go-vmanage/observability"
)

// RateLimitConfig configures the rate limit middleware.
type RateLimitConfig struct {
	Limiter *rate.Limiter
	Logger  observability.Logger
	Metrics observability.MetricsRecorder
}

// RateLimit returns a middleware that applies token-bucket rate limiting to
// requests. A nil limiter disables rate limiting and the middleware becomes
// a pass-through.
func RateLimit(cfg RateLimitConfig) func(http.RoundTripper) http.RoundTripper {
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &rateLimitTransport{
			next:    next,
			limiter: cfg.Limiter,
			logger:  cfg.Logger,
			metrics: cfg.Metrics,
		}
	}
}

type rateLimitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter == nil {
		return t.next.RoundTrip(req) //nolint:wrapcheck // Pass-through when rate limiting is disabled
	}

	start := time.Now()
	if err := t.limiter.Wait(req.Context()); err != nil {
		t.metrics.RecordError("rate_limit", "WaitCancelled")
		return nil, err //nolint:wrapcheck // Context cancellation surfaces unchanged
	}

	if wait := time.Since(start); wait > time.Millisecond {
		t.logger.Debug("rate limit wait",
			observability.Field{Key: "path", Value: req.URL.Path},
			observability.Field{Key: "wait", Value: wait},
		)
		t.metrics.RecordRateLimit(req.URL.Path, wait)
	}

	return t.next.RoundTrip(req) //nolint:wrapcheck // Middleware passes through errors from next handler in chain
}
