package oidcrp

import (
	"context"
	"net/http"

	"github.com/auth0/go-oidc-rp/config"
	"github.com/auth0/go-oidc-rp/discovery"
)

// MetadataSource discovers provider metadata. *discovery.Fetcher and
// *discovery.CachingFetcher implement it.
type MetadataSource interface {
	Fetch(ctx context.Context, issuerBaseURL string) (*discovery.ProviderMetadata, error)
}

// NewMetadataSource builds the discovery source cfg describes: a
// *discovery.CachingFetcher when cfg.CacheTTL is positive, a plain
// *discovery.Fetcher otherwise.
func NewMetadataSource(cfg *config.Config, opts ...discovery.Option) (MetadataSource, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	var fetcherOpts []discovery.Option
	if cfg.HTTPTimeout > 0 {
		fetcherOpts = append(fetcherOpts, discovery.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	}
	fetcherOpts = append(fetcherOpts, discovery.WithIssuerCheck(cfg.IssuerCheck))
	fetcherOpts = append(fetcherOpts, opts...)

	fetcher, err := discovery.NewFetcher(fetcherOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.CacheTTL > 0 {
		return discovery.NewCachingFetcher(fetcher, cfg.CacheTTL), nil
	}
	return fetcher, nil
}

// NewFromConfig discovers cfg.Issuer and builds a Client from the result.
//
// Settings in cfg are applied before opts, so options win. Without
// WithMetadataSource a new, uncached source is built from cfg and shares the
// Client's HTTP client, logger, metrics and tracer.
//
// Example:
//
//	cfg, err := config.Load("oidc.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := oidcrp.NewFromConfig(ctx, cfg, oidcrp.WithLogger(slog.Default()))
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	configured := []Option{
		WithPKCEMethod(cfg.PKCEMethod),
		WithSubjectClaim(cfg.SubjectClaim),
	}
	if cfg.HTTPTimeout > 0 {
		configured = append(configured, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	}

	c, err := newClient(append(configured, opts...))
	if err != nil {
		return nil, err
	}

	source := c.source
	if source == nil {
		source, err = discovery.NewFetcher(c.discoveryOptions(cfg)...)
		if err != nil {
			return nil, err
		}
	}

	metadata, err := source.Fetch(ctx, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	if err := c.bind(metadata, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI, cfg.Scopes); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) discoveryOptions(cfg *config.Config) []discovery.Option {
	opts := []discovery.Option{
		discovery.WithIssuerCheck(cfg.IssuerCheck),
	}
	if c.httpClient != http.DefaultClient {
		opts = append(opts, discovery.WithHTTPClient(c.httpClient))
	}
	if c.logger != nil {
		opts = append(opts, discovery.WithLogger(c.logger))
	}
	if c.metrics != nil {
		opts = append(opts, discovery.WithMetrics(c.metrics))
	}
	if otelTracer, ok := c.tracer.(*OpenTelemetryTracer); ok {
		opts = append(opts, discovery.WithTracer(otelTracer.Tracer()))
	}
	return opts
}
