/*
Package oidc performs the raw OpenID Connect discovery request.

This internal package builds the well-known configuration URL for an issuer
and fetches the document body. It does not decode or validate the document;
that is the job of the public discovery package.

# Discovery URL

The discovery document lives at a fixed path below the issuer:

	https://issuer.example.com/.well-known/openid-configuration

Trailing slashes on the issuer are removed before the path is appended, so
both "https://issuer.example.com" and "https://issuer.example.com/" map to
the URL above. Issuers with a path component keep it:

	https://issuer.example.com/tenant-a/.well-known/openid-configuration

# Usage

	client := &http.Client{Timeout: 10 * time.Second}

	body, err := oidc.GetWellKnownDocument(ctx, client, "https://auth.example.com/")
	if err != nil {
	    var statusErr *oidc.StatusError
	    if errors.As(err, &statusErr) {
	        // The provider answered with a non-2xx status.
	    }
	}

# HTTP Client Configuration

The function accepts a custom *http.Client. Timeouts, proxies, TLS settings
and retries all belong to that client; this package issues exactly one GET.

# References

OpenID Connect Discovery 1.0
https://openid.net/specs/openid-connect-discovery-1_0.html
*/
package oidc
