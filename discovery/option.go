package discovery

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// Option is how options for the Fetcher are set up.
type Option func(*Fetcher) error

// WithHTTPClient sets the HTTP client used for the discovery request.
// If not specified, a default client with a 30s timeout is used.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) error {
		if c == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		f.client = c
		return nil
	}
}

// WithLogger sets a structured logger. *slog.Logger satisfies Logger.
func WithLogger(logger Logger) Option {
	return func(f *Fetcher) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		f.logger = logger
		return nil
	}
}

// WithMetrics records request counts and latency for each Fetch.
func WithMetrics(m Metrics) Option {
	return func(f *Fetcher) error {
		if m == nil {
			return fmt.Errorf("metrics cannot be nil")
		}
		f.metrics = m
		return nil
	}
}

// WithTracer wraps each Fetch in an OpenTelemetry span.
func WithTracer(t trace.Tracer) Option {
	return func(f *Fetcher) error {
		if t == nil {
			return fmt.Errorf("tracer cannot be nil")
		}
		f.tracer = t
		return nil
	}
}

// WithIssuerCheck requires the document's issuer to equal the requested
// issuer base URL, ignoring trailing slashes. A mismatch is reported as
// malformed metadata.
//
// Default: false
func WithIssuerCheck(enabled bool) Option {
	return func(f *Fetcher) error {
		f.issuerCheck = enabled
		return nil
	}
}
