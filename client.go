package vmanage

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-vmanage/internal/httpclient"
	"github.com/lexfrei/go-vmanage/internal/middleware"
	"github.com/lexfrei/go-vmanage/internal/ratelimit"
	"github.com/lexfrei/go-vmanage/observability"
)

const (
	// DefaultPort is the controller's default HTTPS port.
	DefaultPort = 443

	// DefaultConcurrency is the default cap on simultaneous in-flight requests.
	DefaultConcurrency = 40

	loginPath       = "/j_security_check"
	tokenPath       = "/dataservice/client/token"
	dataServicePath = "/dataservice"
)

// Client is an authenticated session against a vManage controller.
//
// All session state (base URL, cookie, CSRF token) is fixed during
// construction and never mutated afterwards, so a single Client is safe for
// concurrent use by multiple goroutines without locking.
type Client struct {
	authURL     string // https://host:port, used only during the handshake
	baseURL     string // https://host:port/dataservice once authenticated
	headers     http.Header
	connected   bool
	concurrency int

	http    *httpclient.Client
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

// Config holds configuration for the vManage client.
type Config struct {
	// Host is the controller's hostname or address (required).
	Host string

	// Port is the controller's HTTPS port (defaults to 443).
	Port int

	// Username and Password are the login credentials (required).
	Username string
	Password string

	// VerifyTLS enables TLS certificate verification. Controllers ship with
	// self-signed certificates, so verification is off by default; enable it
	// only when the controller carries a trusted certificate.
	VerifyTLS bool

	// Concurrency caps simultaneous in-flight requests during fan-out reads
	// (defaults to 40).
	Concurrency int

	// RateLimitPerMinute optionally bounds the overall request rate.
	// Zero disables rate limiting.
	RateLimitPerMinute int

	// Timeout bounds each HTTP request. Zero (the default) means no timeout;
	// bound long-running collection calls with context deadlines instead.
	Timeout time.Duration

	// HTTPClient is the HTTP client to use (optional). When set, the
	// VerifyTLS, RateLimitPerMinute and Timeout fields are ignored.
	HTTPClient *http.Client

	// Logger for observability (optional, uses noop logger if nil)
	Logger observability.Logger

	// Metrics recorder for observability (optional, uses noop recorder if nil)
	Metrics observability.MetricsRecorder

	// Debug is reserved for callers' own logging layers; the client itself
	// reports through Logger.
	Debug bool
}

// New creates a client with default settings and performs the login
// handshake.
//
// An error is returned only when the controller is unreachable at the
// transport level. A login rejection (bad credentials) is not an error: the
// returned client reports Connected() == false and every accessor yields an
// absent result.
//
// Example:
//
//	client, err := vmanage.New(ctx, "vmanage.example.com", "admin", "secret")
func New(ctx context.Context, host, username, password string) (*Client, error) {
	return NewWithConfig(ctx, &Config{
		Host:     host,
		Username: username,
		Password: password,
	})
}

// NewWithConfig creates a client with custom configuration and performs the
// login handshake. See New for the error contract.
//
// Example:
//
//	client, err := vmanage.NewWithConfig(ctx, &vmanage.Config{
//	    Host:        "vmanage.example.com",
//	    Username:    "admin",
//	    Password:    "secret",
//	    Concurrency: 10,
//	    Logger:      myLogger,
//	})
func NewWithConfig(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Host == "" {
		return nil, errors.New("host is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("username and password are required")
	}

	// Set defaults
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	c := &Client{
		authURL:     fmt.Sprintf("https://%s:%d", cfg.Host, cfg.Port),
		concurrency: cfg.Concurrency,
		http:        newHTTPClient(cfg, logger, metrics),
		logger:      logger.With(observability.Field{Key: "host", Value: cfg.Host}),
		metrics:     metrics,
	}
	c.baseURL = c.authURL + dataServicePath

	if err := c.login(ctx, cfg.Username, cfg.Password); err != nil {
		return nil, err
	}

	return c, nil
}

// newHTTPClient builds the middleware-chained HTTP client.
// Chain order from outside in: observability, rate limit, TLS transport.
func newHTTPClient(cfg *Config, logger observability.Logger, metrics observability.MetricsRecorder) *httpclient.Client {
	if cfg.HTTPClient != nil {
		return httpclient.New(
			httpclient.WithHTTPClient(cfg.HTTPClient),
			httpclient.WithMiddleware(middleware.Observability(logger, metrics)),
		)
	}

	tlsConfig := middleware.InsecureSkipVerify()
	if cfg.VerifyTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rateLimitCfg := middleware.RateLimitConfig{Logger: logger, Metrics: metrics}
	if cfg.RateLimitPerMinute > 0 {
		rateLimitCfg.Limiter = ratelimit.NewRateLimiter(cfg.RateLimitPerMinute)
	}

	return httpclient.New(
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithMiddleware(
			middleware.Observability(logger, metrics),
			middleware.RateLimit(rateLimitCfg),
			middleware.TLSConfig(tlsConfig),
		),
	)
}

// login performs the two-step handshake: form-encoded credential POST, then
// CSRF token fetch with the issued session cookie.
//
// Transport failures are returned as errors. A rejected login leaves the
// client permanently unauthenticated and returns nil.
func (c *Client) login(ctx context.Context, username, password string) error {
	form := url.Values{
		"j_username": {username},
		"j_password": {password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordError("login", "ConnectivityError")
		return errors.Wrap(err, "login request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read login response")
	}

	// The controller answers bad credentials with an HTML login page and
	// status 200, so the body has to be inspected as well.
	if resp.StatusCode != http.StatusOK || strings.HasPrefix(string(body), "<html>") {
		c.logger.Warn("login rejected", observability.Field{Key: "status", Value: resp.StatusCode})
		return nil
	}

	// Only the name=value pair of the first Set-Cookie directive matters;
	// attributes like Path and HttpOnly are discarded.
	cookie, _, _ := strings.Cut(resp.Header.Get("Set-Cookie"), ";")
	if cookie == "" {
		c.logger.Warn("login response carried no session cookie")
		return nil
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Cookie", cookie)

	token, err := c.fetchToken(ctx, headers)
	if err != nil {
		return err
	}
	if token == "" {
		c.logger.Warn("CSRF token fetch rejected")
		return nil
	}

	headers.Set("X-XSRF-TOKEN", token)
	c.headers = headers
	c.connected = true

	c.logger.Info("session established")

	return nil
}

// fetchToken retrieves the CSRF token issued for the session cookie. An
// empty token with a nil error means the controller refused the session.
func (c *Client) fetchToken(ctx context.Context, headers http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.authURL+tokenPath, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build token request")
	}
	req.Header = headers.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordError("login", "ConnectivityError")
		return "", errors.Wrap(err, "token request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read token response")
	}

	return string(body), nil
}

// Connected reports whether the login handshake succeeded. When false, every
// accessor returns an absent result without touching the network.
func (c *Client) Connected() bool {
	return c.connected
}
