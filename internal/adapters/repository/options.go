package repository

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/okian/peereval/pkg/logger"
)

// Option applies a configuration option to the RemoteStore.
type Option func(*RemoteStore)

// WithHTTPClient replaces the HTTP client. Its Timeout is left untouched.
func WithHTTPClient(c *http.Client) Option {
	return func(s *RemoteStore) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout bounds each round trip.
func WithTimeout(d time.Duration) Option {
	return func(s *RemoteStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRateLimit paces outbound requests to perSecond with the given burst.
// perSecond <= 0 disables pacing.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *RemoteStore) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *RemoteStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used for store spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *RemoteStore) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock sets the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *RemoteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(s *RemoteStore) {
		if n > 0 {
			s.maxBody = n
		}
	}
}
