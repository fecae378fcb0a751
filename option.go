package oidcrp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/auth0/go-oidc-rp/authcode"
)

// Option configures the Client.
// Returns error for validation failures.
type Option func(*Client) error

// WithPKCEMethod enables PKCE with the given code challenge method, "S256"
// or "plain". The method is not checked against the provider's
// code_challenge_methods_supported.
//
// Default: "" (PKCE disabled)
func WithPKCEMethod(method string) Option {
	return func(c *Client) error {
		switch method {
		case "", authcode.PKCEMethodS256, authcode.PKCEMethodPlain:
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedPKCEMethod, method)
		}
		c.pkceMethod = method
		return nil
	}
}

// WithSubjectClaim names the claim that identifies the resource owner in
// identities returned by the Client. An empty key keeps the default.
//
// Default: "sub"
func WithSubjectClaim(key string) Option {
	return func(c *Client) error {
		if key != "" {
			c.subjectClaim = key
		}
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for token, UserInfo and, through
// NewFromConfig, discovery requests. Timeouts are configured on the client.
//
// Default: http.DefaultClient
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		if client == nil {
			return ErrHTTPClientNil
		}
		c.httpClient = client
		return nil
	}
}

// WithLogger sets an optional logger for the Client.
//
// The logger interface is compatible with log/slog.Logger and similar loggers.
//
// Example:
//
//	client, err := oidcrp.New(metadata, clientID, clientSecret, redirectURI, scopes,
//	    oidcrp.WithLogger(slog.Default()),
//	)
func WithLogger(logger Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return ErrLoggerNil
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics records token exchange and UserInfo outcomes.
func WithMetrics(metrics Metrics) Option {
	return func(c *Client) error {
		if metrics == nil {
			return ErrMetricsNil
		}
		c.metrics = metrics
		return nil
	}
}

// WithTracer wraps network operations in spans.
func WithTracer(tracer Tracer) Option {
	return func(c *Client) error {
		if tracer == nil {
			return ErrTracerNil
		}
		c.tracer = tracer
		return nil
	}
}

// WithCollaborator replaces the OAuth2 client the Client would otherwise
// build over golang.org/x/oauth2. The caller is responsible for configuring
// it consistently with the provider metadata.
func WithCollaborator(collaborator Collaborator) Option {
	return func(c *Client) error {
		if collaborator == nil {
			return ErrCollaboratorNil
		}
		c.collaborator = collaborator
		return nil
	}
}

// WithMetadataSource sets where NewFromConfig discovers provider metadata.
// Share one source, such as a *discovery.CachingFetcher, between clients to
// avoid repeated discovery. New ignores it.
func WithMetadataSource(source MetadataSource) Option {
	return func(c *Client) error {
		if source == nil {
			return ErrMetadataSourceNil
		}
		c.source = source
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrMetadataNil           = errors.New("provider metadata cannot be nil")
	ErrUnsupportedPKCEMethod = authcode.ErrUnsupportedPKCEMethod
	ErrHTTPClientNil         = errors.New("HTTP client cannot be nil")
	ErrLoggerNil             = errors.New("logger cannot be nil")
	ErrMetricsNil            = errors.New("metrics cannot be nil")
	ErrTracerNil             = errors.New("tracer cannot be nil")
	ErrCollaboratorNil       = errors.New("collaborator cannot be nil")
	ErrMetadataSourceNil     = errors.New("metadata source cannot be nil")
	ErrConfigNil             = errors.New("config cannot be nil")
	ErrIDTokenMissing        = errors.New("token response carries no id_token")
)
