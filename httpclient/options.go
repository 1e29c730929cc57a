package httpclient

import (
	"time"

	"github.com/kbukum/restauth/logger"
	"github.com/kbukum/restauth/observability"
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The client tags it with component "httpclient".
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records request counts, durations and auth failures.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithClock replaces time.Now for token timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
