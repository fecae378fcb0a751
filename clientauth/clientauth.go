// Package clientauth chooses how a confidential client authenticates to an
// OpenID Provider's token endpoint.
//
// The choice is made once from the provider's advertised
// token_endpoint_auth_methods_supported and never changes afterwards:
//
//	strategy := clientauth.Select(metadata)
//	cfg.Endpoint.AuthStyle = strategy.AuthStyle()
package clientauth

import (
	"golang.org/x/oauth2"

	"github.com/auth0/go-oidc-rp/discovery"
)

// Token endpoint authentication method names from OpenID Connect Core §9.
const (
	MethodClientSecretBasic = "client_secret_basic"
	MethodClientSecretPost  = "client_secret_post"
	MethodClientSecretJWT   = "client_secret_jwt"
	MethodPrivateKeyJWT     = "private_key_jwt"
	MethodNone              = "none"
)

// Strategy is the client authentication strategy used on token requests.
type Strategy int

const (
	// None leaves the choice to the OAuth2 client's own default.
	None Strategy = iota
	// Basic sends the client credentials in an HTTP Basic Authorization header.
	Basic
	// PostBody sends the client credentials as form parameters.
	PostBody
)

// String returns the discovery method name for the strategy.
func (s Strategy) String() string {
	switch s {
	case Basic:
		return MethodClientSecretBasic
	case PostBody:
		return MethodClientSecretPost
	default:
		return "none"
	}
}

// AuthStyle maps the strategy onto golang.org/x/oauth2.
func (s Strategy) AuthStyle() oauth2.AuthStyle {
	switch s {
	case Basic:
		return oauth2.AuthStyleInHeader
	case PostBody:
		return oauth2.AuthStyleInParams
	default:
		return oauth2.AuthStyleAutoDetect
	}
}

// Select picks the strategy for metadata. client_secret_basic wins over
// client_secret_post when both are advertised; with neither, None is
// returned. Select is pure and a nil metadata yields None.
func Select(metadata *discovery.ProviderMetadata) Strategy {
	if metadata == nil {
		return None
	}
	if metadata.SupportsTokenEndpointAuthMethod(MethodClientSecretBasic) {
		return Basic
	}
	if metadata.SupportsTokenEndpointAuthMethod(MethodClientSecretPost) {
		return PostBody
	}
	return None
}
