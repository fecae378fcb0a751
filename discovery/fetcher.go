package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/auth0/go-oidc-rp/internal/oidc"
)

// Metric names recorded by the Fetcher.
const (
	MetricRequestsTotal   = "oidc_discovery_requests_total"
	MetricRequestDuration = "oidc_discovery_duration_seconds"
	MetricCachedIssuers   = "oidc_discovery_cached_issuers"
)

// Logger defines an optional structured logging interface.
// It is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Metrics is the metrics sink used by the Fetcher and CachingFetcher.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	ObserveHistogram(name string, value float64, tags map[string]string)
	SetGauge(name string, value float64, tags map[string]string)
}

// Fetcher retrieves and decodes OpenID Provider discovery documents.
// It keeps no state between calls and is safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	logger      Logger
	metrics     Metrics
	tracer      trace.Tracer
	issuerCheck bool
}

// NewFetcher builds and returns a new *Fetcher.
//
// Example:
//
//	fetcher, err := discovery.NewFetcher(
//	    discovery.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
//	    discovery.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	metadata, err := fetcher.Fetch(ctx, "https://auth.example.com/")
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Fetch issues a single GET to <issuerBaseURL>/.well-known/openid-configuration
// and returns the decoded metadata. Nothing is cached and nothing is retried.
//
// Failures are *Error values: KindDiscoveryUnreachable when the request
// failed or returned a non-2xx status, KindMalformedMetadata when the body
// is not a discovery document carrying every required field.
func (f *Fetcher) Fetch(ctx context.Context, issuerBaseURL string) (*ProviderMetadata, error) {
	var span trace.Span
	if f.tracer != nil {
		ctx, span = f.tracer.Start(ctx, "oidc.discovery.fetch",
			trace.WithAttributes(attribute.String("oidc.issuer", issuerBaseURL)))
		defer span.End()
	}

	start := time.Now()
	metadata, err := f.fetch(ctx, issuerBaseURL)
	duration := time.Since(start)

	result := "success"
	if err != nil {
		result = string(errorKind(err))
	}
	if f.metrics != nil {
		f.metrics.IncCounter(MetricRequestsTotal, map[string]string{"result": result})
		f.metrics.ObserveHistogram(MetricRequestDuration, duration.Seconds(), map[string]string{"result": result})
	}

	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		if f.logger != nil {
			f.logger.Error("Provider discovery failed", "issuer", issuerBaseURL, "error", err, "duration", duration)
		}
		return nil, err
	}

	if f.logger != nil {
		f.logger.Debug("Provider discovery succeeded",
			"issuer", metadata.Issuer,
			"authorization_endpoint", metadata.AuthorizationEndpoint,
			"token_endpoint", metadata.TokenEndpoint,
			"duration", duration)
	}

	return metadata, nil
}

func (f *Fetcher) fetch(ctx context.Context, issuerBaseURL string) (*ProviderMetadata, error) {
	body, err := oidc.GetWellKnownDocument(ctx, f.client, issuerBaseURL)
	if err != nil {
		var statusErr *oidc.StatusError
		if errors.As(err, &statusErr) {
			return nil, newUnreachableError(statusErr.StatusCode, err)
		}
		if errors.Is(err, oidc.ErrDocumentTooLarge) {
			return nil, newMalformedError("discovery document too large", err)
		}
		return nil, newUnreachableError(0, err)
	}

	var metadata ProviderMetadata
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, newMalformedError("could not decode discovery document", err)
	}

	if err := metadata.Validate(); err != nil {
		return nil, err
	}

	if f.issuerCheck && !sameIssuer(metadata.Issuer, issuerBaseURL) {
		return nil, newMalformedError(
			"issuer mismatch: discovery document names "+metadata.Issuer+", expected "+issuerBaseURL,
			nil,
		)
	}

	return &metadata, nil
}

func sameIssuer(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

func errorKind(err error) ErrorKind {
	var discErr *Error
	if errors.As(err, &discErr) {
		return discErr.Kind
	}
	return KindDiscoveryUnreachable
}
