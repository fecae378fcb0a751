/*
Package oidcrp is an OpenID Connect Relying Party helper built on top of
golang.org/x/oauth2.

It discovers what an OpenID Provider supports, picks how the client
authenticates to the token endpoint, configures an OAuth 2.0 Authorization
Code client and turns UserInfo responses into a typed identity view. The
pieces live in their own packages and can be used alone:

  - discovery: fetches and validates /.well-known/openid-configuration
  - clientauth: chooses client_secret_basic, client_secret_post or neither
  - authcode: the Authorization Code client (authorization URL, code
    exchange, UserInfo)
  - claims: read-only accessors over standard OpenID Connect claims
  - config: YAML client settings

# Quick Start

	import (
	    "github.com/auth0/go-oidc-rp"
	    "github.com/auth0/go-oidc-rp/authcode"
	    "github.com/auth0/go-oidc-rp/discovery"
	)

	func main() {
	    fetcher, err := discovery.NewFetcher()
	    if err != nil {
	        log.Fatal(err)
	    }

	    metadata, err := fetcher.Fetch(ctx, "https://your-domain.auth0.com/")
	    if err != nil {
	        log.Fatal(err)
	    }

	    client, err := oidcrp.New(metadata,
	        "client-id", "client-secret",
	        "https://app.example.com/callback",
	        []string{"openid", "profile", "email"},
	        oidcrp.WithPKCEMethod("S256"),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    verifier := authcode.GenerateVerifier()
	    authURL, err := client.BuildAuthorizationURL(authcode.AuthorizationRequest{
	        State:        state,
	        Nonce:        nonce,
	        CodeVerifier: verifier,
	    })
	    // Redirect the user to authURL, keep state and verifier in the session.
	}

# Handling the Callback

	token, err := client.ExchangeCode(r.Context(), r.URL.Query().Get("code"), verifier)
	if err != nil {
	    http.Error(w, "login failed", http.StatusBadGateway)
	    return
	}

	identity, err := client.FetchIdentity(r.Context(), token)
	if err != nil {
	    http.Error(w, "login failed", http.StatusBadGateway)
	    return
	}

	subject, ok := identity.Subject()
	email, _ := identity.Email()

Accessors never fail: a claim that is missing or of the wrong type is
reported as absent (ok == false). Non-standard claims are reachable through
Identity.Get.

# Client Authentication

The strategy is selected once, from token_endpoint_auth_methods_supported:

  - client_secret_basic advertised: credentials in the Authorization header
  - else client_secret_post advertised: credentials in the request body
  - else: golang.org/x/oauth2 auto-detection

# Errors

Discovery failures are *discovery.Error values and match
discovery.ErrDiscoveryUnreachable or discovery.ErrMalformedMetadata with
errors.Is. Token exchange and UserInfo failures are *authcode.Error values
matching authcode.ErrTokenExchangeFailed or authcode.ErrProfileFetchFailed;
they unwrap to the underlying cause, for instance *oauth2.RetrieveError.

# Logout

The Client does not orchestrate logout. EndSessionEndpoint exposes the
provider's end_session_endpoint so callers can build the redirect.

# Thread Safety

A Client holds no mutable state after New returns and may be shared by
concurrent requests. Timeouts and cancellation belong to the HTTP client
(WithHTTPClient) and the request context.
*/
package oidcrp
