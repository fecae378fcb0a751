/*
Package discovery fetches and models OpenID Provider metadata.

An OpenID Provider publishes its endpoints and capabilities at a well-known
location below its issuer identifier:

	https://issuer.example.com/.well-known/openid-configuration

The Fetcher retrieves that document with a single GET and decodes it into a
ProviderMetadata value. Required fields (issuer, authorization_endpoint,
jwks_uri, response_types_supported and subject_types_supported) are checked
before the value is returned, so callers never see a partially populated
document.

# Usage

	fetcher, err := discovery.NewFetcher()
	if err != nil {
	    log.Fatal(err)
	}

	metadata, err := fetcher.Fetch(ctx, "https://auth.example.com/")
	switch {
	case errors.Is(err, discovery.ErrDiscoveryUnreachable):
	    // network failure or non-2xx status; see (*discovery.Error).StatusCode
	case errors.Is(err, discovery.ErrMalformedMetadata):
	    // not JSON, or required fields missing; see MissingFields
	case err != nil:
	    // unexpected
	}

	if metadata.SupportsTokenEndpointAuthMethod("client_secret_basic") {
	    // ...
	}

# Defaults

Boolean flags absent from the document take the values defined by OpenID
Connect Discovery 1.0: request_uri_parameter_supported defaults to true,
the other flags to false.

# Caching

Fetcher never caches. Wrap it in a CachingFetcher when the same issuer is
discovered repeatedly:

	cached := discovery.NewCachingFetcher(fetcher, 30*time.Minute)
	metadata, err := cached.Fetch(ctx, issuer)

Concurrent misses for one issuer collapse into a single request. Errors are
not cached.

# Observability

WithLogger accepts any structured logger with Debug/Info/Warn/Error methods
(including *slog.Logger). WithMetrics records oidc_discovery_requests_total
and oidc_discovery_duration_seconds tagged with the result. WithTracer wraps
each fetch in an OpenTelemetry span.
*/
package discovery
