package discovery

import (
	"encoding/json"
	"slices"
)

// ProviderMetadata is the typed form of an OpenID Provider's discovery
// document. Treat it as read-only once returned by a Fetcher.
type ProviderMetadata struct {
	// Issuer is the OP's issuer identifier. It must match the iss claim of
	// tokens issued by the OP. Required.
	Issuer string `json:"issuer"`

	// AuthorizationEndpoint is the OAuth 2.0 Authorization Endpoint. Required.
	AuthorizationEndpoint string `json:"authorization_endpoint"`

	// TokenEndpoint is the OAuth 2.0 Token Endpoint.
	TokenEndpoint string `json:"token_endpoint,omitempty"`

	// UserinfoEndpoint is the OIDC UserInfo Endpoint.
	UserinfoEndpoint string `json:"userinfo_endpoint,omitempty"`

	// EndSessionEndpoint is where the RP redirects the End-User to log out at the OP.
	EndSessionEndpoint string `json:"end_session_endpoint,omitempty"`

	// JWKSURI is the URL of the OP's JSON Web Key Set document. Required.
	JWKSURI string `json:"jwks_uri"`

	// RegistrationEndpoint is the OIDC Dynamic Client Registration Endpoint.
	RegistrationEndpoint string `json:"registration_endpoint,omitempty"`

	ScopesSupported []string `json:"scopes_supported,omitempty"`

	// ResponseTypesSupported lists the response_type values the OP supports. Required.
	ResponseTypesSupported []string `json:"response_types_supported"`

	ResponseModesSupported []string `json:"response_modes_supported,omitempty"`
	GrantTypesSupported    []string `json:"grant_types_supported,omitempty"`
	ACRValuesSupported     []string `json:"acr_values_supported,omitempty"`

	// SubjectTypesSupported lists the subject identifier types (public, pairwise). Required.
	SubjectTypesSupported []string `json:"subject_types_supported"`

	IDTokenSigningAlgValuesSupported          []string `json:"id_token_signing_alg_values_supported,omitempty"`
	IDTokenEncryptionAlgValuesSupported       []string `json:"id_token_encryption_alg_values_supported,omitempty"`
	IDTokenEncryptionEncValuesSupported       []string `json:"id_token_encryption_enc_values_supported,omitempty"`
	UserinfoSigningAlgValuesSupported         []string `json:"userinfo_signing_alg_values_supported,omitempty"`
	UserinfoEncryptionAlgValuesSupported      []string `json:"userinfo_encryption_alg_values_supported,omitempty"`
	UserinfoEncryptionEncValuesSupported      []string `json:"userinfo_encryption_enc_values_supported,omitempty"`
	RequestObjectSigningAlgValuesSupported    []string `json:"request_object_signing_alg_values_supported,omitempty"`
	RequestObjectEncryptionAlgValuesSupported []string `json:"request_object_encryption_alg_values_supported,omitempty"`
	RequestObjectEncryptionEncValuesSupported []string `json:"request_object_encryption_enc_values_supported,omitempty"`

	// TokenEndpointAuthMethodsSupported lists the client authentication
	// methods accepted by the token endpoint, in the order the OP published them.
	TokenEndpointAuthMethodsSupported          []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	TokenEndpointAuthSigningAlgValuesSupported []string `json:"token_endpoint_auth_signing_alg_values_supported,omitempty"`

	DisplayValuesSupported []string `json:"display_values_supported,omitempty"`
	ClaimTypesSupported    []string `json:"claim_types_supported,omitempty"`
	ClaimsSupported        []string `json:"claims_supported,omitempty"`
	ClaimsLocalesSupported []string `json:"claims_locales_supported,omitempty"`
	UILocalesSupported     []string `json:"ui_locales_supported,omitempty"`

	// CodeChallengeMethodsSupported lists PKCE methods (RFC 8414). Informational only.
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported,omitempty"`

	// ClaimsParameterSupported defaults to false when absent.
	ClaimsParameterSupported bool `json:"claims_parameter_supported"`

	// RequestParameterSupported defaults to false when absent.
	RequestParameterSupported bool `json:"request_parameter_supported"`

	// RequestURIParameterSupported defaults to true when absent.
	RequestURIParameterSupported bool `json:"request_uri_parameter_supported"`

	// RequireRequestURIRegistration defaults to false when absent.
	RequireRequestURIRegistration bool `json:"require_request_uri_registration"`

	ServiceDocumentation string `json:"service_documentation,omitempty"`
	OPPolicyURI          string `json:"op_policy_uri,omitempty"`
	OPTosURI             string `json:"op_tos_uri,omitempty"`
}

// UnmarshalJSON decodes a discovery document and applies the defaults that
// OpenID Connect Discovery defines for absent boolean flags.
func (m *ProviderMetadata) UnmarshalJSON(data []byte) error {
	type plain ProviderMetadata
	p := plain{RequestURIParameterSupported: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = ProviderMetadata(p)
	return nil
}

// Validate reports every required field that is missing as a single
// MalformedMetadata error.
func (m *ProviderMetadata) Validate() error {
	var missing []string
	if m.Issuer == "" {
		missing = append(missing, "issuer")
	}
	if m.AuthorizationEndpoint == "" {
		missing = append(missing, "authorization_endpoint")
	}
	if m.JWKSURI == "" {
		missing = append(missing, "jwks_uri")
	}
	if len(m.ResponseTypesSupported) == 0 {
		missing = append(missing, "response_types_supported")
	}
	if len(m.SubjectTypesSupported) == 0 {
		missing = append(missing, "subject_types_supported")
	}
	if len(missing) > 0 {
		return newMissingFieldsError(missing)
	}
	return nil
}

// SupportsScope reports whether the OP advertises the scope.
func (m *ProviderMetadata) SupportsScope(scope string) bool {
	return slices.Contains(m.ScopesSupported, scope)
}

// SupportsResponseType reports whether the OP advertises the response_type.
func (m *ProviderMetadata) SupportsResponseType(responseType string) bool {
	return slices.Contains(m.ResponseTypesSupported, responseType)
}

// SupportsGrantType reports whether the OP advertises the grant type. An
// absent list means the OP accepts authorization_code and implicit.
func (m *ProviderMetadata) SupportsGrantType(grantType string) bool {
	if len(m.GrantTypesSupported) == 0 {
		return grantType == "authorization_code" || grantType == "implicit"
	}
	return slices.Contains(m.GrantTypesSupported, grantType)
}

// SupportsTokenEndpointAuthMethod reports whether the token endpoint
// advertises the client authentication method.
func (m *ProviderMetadata) SupportsTokenEndpointAuthMethod(method string) bool {
	return slices.Contains(m.TokenEndpointAuthMethodsSupported, method)
}

// SupportsCodeChallengeMethod reports whether the OP advertises the PKCE method.
func (m *ProviderMetadata) SupportsCodeChallengeMethod(method string) bool {
	return slices.Contains(m.CodeChallengeMethodsSupported, method)
}

// EndSession returns the end_session_endpoint and whether the OP published one.
func (m *ProviderMetadata) EndSession() (string, bool) {
	return m.EndSessionEndpoint, m.EndSessionEndpoint != ""
}
