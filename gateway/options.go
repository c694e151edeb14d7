package gateway

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-sales-client/internal/metrics"
	"github.com/rs/zerolog"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL sets the backend address, e.g. "http://localhost:8000".
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTransport sets the innermost round tripper. Defaults to http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

// WithTimeout sets the per-request timeout. Defaults to 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request counts and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithAuthFailureHandler subscribes fn to auth failures at construction.
func WithAuthFailureHandler(fn func(AuthFailure)) Option {
	return func(c *Client) {
		c.pendingHandlers = append(c.pendingHandlers, fn)
	}
}
