package oidcrp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/auth0/go-oidc-rp/authcode"
	"github.com/auth0/go-oidc-rp/claims"
	"github.com/auth0/go-oidc-rp/clientauth"
	"github.com/auth0/go-oidc-rp/discovery"
)

// Collaborator is the OAuth 2.0 Authorization Code client the Client
// delegates network operations to. *authcode.Client implements it.
type Collaborator interface {
	BuildAuthorizationURL(req authcode.AuthorizationRequest) (string, error)
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error)
	FetchResourceOwnerProfile(ctx context.Context, token *oauth2.Token) (map[string]any, error)
}

// Client is a Relying Party bound to one OpenID Provider. Everything is
// decided at construction; afterwards the Client holds no mutable state and
// is safe for concurrent use.
type Client struct {
	metadata     *discovery.ProviderMetadata
	strategy     clientauth.Strategy
	collaborator Collaborator

	pkceMethod   string
	subjectClaim string
	httpClient   *http.Client
	source       MetadataSource

	logger  Logger
	metrics Metrics
	tracer  Tracer
}

// New builds a Client from discovered provider metadata and the client's
// registration. The authorization, token and UserInfo endpoints are taken
// verbatim from metadata and the token endpoint authentication strategy is
// chosen with clientauth.Select. No network I/O happens.
//
// Example:
//
//	metadata, err := fetcher.Fetch(ctx, "https://auth.example.com/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := oidcrp.New(metadata, "client-id", "client-secret",
//	    "https://app.example.com/callback", []string{"openid", "email"},
//	    oidcrp.WithPKCEMethod("S256"),
//	)
func New(metadata *discovery.ProviderMetadata, clientID, clientSecret, redirectURI string, scopes []string, opts ...Option) (*Client, error) {
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	if err := c.bind(metadata, clientID, clientSecret, redirectURI, scopes); err != nil {
		return nil, err
	}
	return c, nil
}

func newClient(opts []Option) (*Client, error) {
	c := &Client{
		subjectClaim: claims.ClaimSubject,
		httpClient:   http.DefaultClient,
	}

	for _, opt := range opts {
		if opt == nil {
			return nil, errors.New("option cannot be nil")
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Client) bind(metadata *discovery.ProviderMetadata, clientID, clientSecret, redirectURI string, scopes []string) error {
	if metadata == nil {
		return ErrMetadataNil
	}

	c.metadata = metadata
	c.strategy = clientauth.Select(metadata)

	if c.collaborator == nil {
		oauthClient, err := authcode.New(authcode.Options{
			ClientID:                clientID,
			ClientSecret:            clientSecret,
			AuthorizeURL:            metadata.AuthorizationEndpoint,
			AccessTokenURL:          metadata.TokenEndpoint,
			ResourceOwnerDetailsURL: metadata.UserinfoEndpoint,
			RedirectURI:             redirectURI,
			Scopes:                  scopes,
			PKCEMethod:              c.pkceMethod,
			AuthStyle:               c.strategy.AuthStyle(),
			HTTPClient:              c.httpClient,
		})
		if err != nil {
			return err
		}
		c.collaborator = oauthClient
	}

	if c.logger != nil {
		c.logger.Debug("OIDC client configured",
			"issuer", metadata.Issuer,
			"client_id", clientID,
			"auth_strategy", c.strategy.String(),
			"pkce_method", c.pkceMethod)
	}

	return nil
}

// AuthStrategy returns the token endpoint authentication strategy selected
// at construction.
func (c *Client) AuthStrategy() clientauth.Strategy {
	return c.strategy
}

// PKCEMethod returns the configured PKCE method, empty when disabled.
func (c *Client) PKCEMethod() string {
	return c.pkceMethod
}

// SubjectClaim returns the claim key identities read the subject from.
func (c *Client) SubjectClaim() string {
	return c.subjectClaim
}

// Metadata returns the provider metadata the Client was built from. It must
// not be modified.
func (c *Client) Metadata() *discovery.ProviderMetadata {
	return c.metadata
}

// Collaborator returns the OAuth2 client operations are delegated to.
func (c *Client) Collaborator() Collaborator {
	return c.collaborator
}

// EndSessionEndpoint returns the provider's RP-initiated logout endpoint.
// Building the logout redirect is left to the caller.
func (c *Client) EndSessionEndpoint() (string, bool) {
	return c.metadata.EndSession()
}

// BuildAuthorizationURL returns the URL to redirect the End-User to.
func (c *Client) BuildAuthorizationURL(req authcode.AuthorizationRequest) (string, error) {
	authURL, err := c.collaborator.BuildAuthorizationURL(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("Could not build authorization URL", "error", err)
		}
		return "", err
	}
	return authURL, nil
}

// ExchangeCode trades an authorization code for tokens. codeVerifier is
// required when PKCE is enabled and ignored otherwise. Collaborator errors
// are returned unchanged.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	ctx, span := c.startSpan(ctx, "oidc.token_exchange")
	defer span.Finish()
	span.SetTag("oidc.auth_strategy", c.strategy.String())

	start := time.Now()
	token, err := c.collaborator.ExchangeCode(ctx, code, codeVerifier)
	duration := time.Since(start)

	c.record(MetricTokenExchangeTotal, MetricTokenExchangeDuration, duration, err)

	if err != nil {
		span.SetError(err)
		if c.logger != nil {
			c.logger.Error("Token exchange failed", "error", err, "duration", duration)
		}
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug("Token exchange succeeded", "duration", duration)
	}

	return token, nil
}

// FetchIdentity calls the UserInfo endpoint and wraps the returned claims.
// Collaborator errors are returned unchanged.
func (c *Client) FetchIdentity(ctx context.Context, token *oauth2.Token) (*claims.Identity, error) {
	ctx, span := c.startSpan(ctx, "oidc.userinfo")
	defer span.Finish()

	start := time.Now()
	profile, err := c.collaborator.FetchResourceOwnerProfile(ctx, token)
	duration := time.Since(start)

	c.record(MetricUserinfoRequestsTotal, MetricUserinfoDuration, duration, err)

	if err != nil {
		span.SetError(err)
		if c.logger != nil {
			c.logger.Error("UserInfo request failed", "error", err, "duration", duration)
		}
		return nil, err
	}

	identity := c.NewIdentity(profile)
	if c.logger != nil {
		subject, _ := identity.Subject()
		c.logger.Debug("UserInfo request succeeded", "subject", subject, "duration", duration)
	}

	return identity, nil
}

// IDTokenIdentity decodes the id_token carried by a token response into an
// identity. The token is NOT verified; use its claims for display only
// unless it has been validated elsewhere.
func (c *Client) IDTokenIdentity(token *oauth2.Token) (*claims.Identity, error) {
	if token == nil {
		return nil, authcode.ErrTokenNil
	}
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, ErrIDTokenMissing
	}
	return claims.FromIDToken(raw, claims.WithSubjectClaim(c.subjectClaim))
}

// NewIdentity wraps a raw claims payload using the Client's subject claim.
func (c *Client) NewIdentity(raw map[string]any) *claims.Identity {
	return claims.New(raw, claims.WithSubjectClaim(c.subjectClaim))
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, Span) {
	if c.tracer == nil {
		return ctx, &NoopSpan{}
	}
	return c.tracer.StartSpan(ctx, name)
}

func (c *Client) record(counter, histogram string, duration time.Duration, err error) {
	if c.metrics == nil {
		return
	}
	tags := map[string]string{"result": result(err)}
	c.metrics.IncCounter(counter, tags)
	c.metrics.ObserveHistogram(histogram, duration.Seconds(), tags)
}

// result labels an outcome for metrics.
func result(err error) string {
	if err == nil {
		return "success"
	}
	var oauthErr *authcode.Error
	if errors.As(err, &oauthErr) {
		return string(oauthErr.Kind)
	}
	return "error"
}
