package authcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// PKCE code challenge methods (RFC 7636 §4.2).
const (
	PKCEMethodS256  = "S256"
	PKCEMethodPlain = "plain"
)

// maxProfileSize caps how much of a UserInfo response is read.
const maxProfileSize = 1 << 20

// Sentinel errors for configuration and request validation.
var (
	ErrUnsupportedPKCEMethod = errors.New("unsupported PKCE method (use S256 or plain)")
	ErrCodeVerifierRequired  = errors.New("PKCE is enabled but no code verifier was supplied")
	ErrNoUserinfoEndpoint    = errors.New("no userinfo endpoint configured")
	ErrTokenNil              = errors.New("token cannot be nil")
	ErrReservedParameter     = errors.New("extra parameter is reserved")
)

// reservedParams are set by the client itself and cannot be overridden
// through AuthorizationRequest.Extra.
var reservedParams = map[string]bool{
	"client_id":             true,
	"redirect_uri":          true,
	"response_type":         true,
	"scope":                 true,
	"state":                 true,
	"nonce":                 true,
	"code_challenge":        true,
	"code_challenge_method": true,
}

// Options configures the Authorization Code client.
type Options struct {
	ClientID     string
	ClientSecret string

	// AuthorizeURL is the provider's authorization endpoint.
	AuthorizeURL string
	// AccessTokenURL is the provider's token endpoint.
	AccessTokenURL string
	// ResourceOwnerDetailsURL is the provider's UserInfo endpoint.
	ResourceOwnerDetailsURL string

	RedirectURI string
	Scopes      []string

	// PKCEMethod is "S256", "plain" or empty to disable PKCE.
	PKCEMethod string

	// AuthStyle selects how client credentials reach the token endpoint.
	// The zero value lets golang.org/x/oauth2 auto-detect.
	AuthStyle oauth2.AuthStyle

	// HTTPClient is used for token and UserInfo requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
}

// Client is an OAuth 2.0 Authorization Code client. It holds no mutable
// state and is safe for concurrent use.
type Client struct {
	config      oauth2.Config
	userInfoURL string
	pkceMethod  string
	httpClient  *http.Client
}

// New builds a Client. Only the PKCE method is validated; endpoints are used
// verbatim and no network I/O happens.
func New(opts Options) (*Client, error) {
	switch opts.PKCEMethod {
	case "", PKCEMethodS256, PKCEMethodPlain:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPKCEMethod, opts.PKCEMethod)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		config: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   opts.AuthorizeURL,
				TokenURL:  opts.AccessTokenURL,
				AuthStyle: opts.AuthStyle,
			},
			RedirectURL: opts.RedirectURI,
			Scopes:      append([]string(nil), opts.Scopes...),
		},
		userInfoURL: opts.ResourceOwnerDetailsURL,
		pkceMethod:  opts.PKCEMethod,
		httpClient:  httpClient,
	}, nil
}

// Config returns a copy of the underlying oauth2 configuration.
func (c *Client) Config() oauth2.Config {
	cfg := c.config
	cfg.Scopes = append([]string(nil), c.config.Scopes...)
	return cfg
}

// AuthStyle returns the configured client authentication style.
func (c *Client) AuthStyle() oauth2.AuthStyle {
	return c.config.Endpoint.AuthStyle
}

// PKCEMethod returns the configured PKCE method, empty when disabled.
func (c *Client) PKCEMethod() string {
	return c.pkceMethod
}

// UserInfoURL returns the configured UserInfo endpoint.
func (c *Client) UserInfoURL() string {
	return c.userInfoURL
}

// AuthorizationRequest holds the per-request authorization parameters.
type AuthorizationRequest struct {
	State string
	Nonce string

	// CodeVerifier is required when PKCE is enabled. See GenerateVerifier.
	CodeVerifier string

	Prompt    string
	LoginHint string

	// Extra carries additional query parameters such as acr_values or
	// ui_locales. Parameters the client sets itself are rejected with
	// ErrReservedParameter.
	Extra map[string]string
}

// BuildAuthorizationURL returns the URL the End-User is redirected to.
func (c *Client) BuildAuthorizationURL(req AuthorizationRequest) (string, error) {
	var opts []oauth2.AuthCodeOption

	for k, v := range req.Extra {
		if reservedParams[k] {
			return "", fmt.Errorf("%w: %q", ErrReservedParameter, k)
		}
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	if req.Nonce != "" {
		opts = append(opts, oauth2.SetAuthURLParam("nonce", req.Nonce))
	}
	if req.Prompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", req.Prompt))
	}
	if req.LoginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", req.LoginHint))
	}

	switch c.pkceMethod {
	case PKCEMethodS256:
		if req.CodeVerifier == "" {
			return "", ErrCodeVerifierRequired
		}
		opts = append(opts, oauth2.S256ChallengeOption(req.CodeVerifier))
	case PKCEMethodPlain:
		if req.CodeVerifier == "" {
			return "", ErrCodeVerifierRequired
		}
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", req.CodeVerifier),
			oauth2.SetAuthURLParam("code_challenge_method", PKCEMethodPlain),
		)
	}

	return c.config.AuthCodeURL(req.State, opts...), nil
}

// ExchangeCode trades an authorization code for tokens. codeVerifier is
// sent as code_verifier when PKCE is enabled.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	var opts []oauth2.AuthCodeOption
	if c.pkceMethod != "" {
		if codeVerifier == "" {
			return nil, ErrCodeVerifierRequired
		}
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}

	token, err := c.config.Exchange(c.context(ctx), code, opts...)
	if err != nil {
		return nil, newTokenExchangeError(err)
	}

	return token, nil
}

// FetchResourceOwnerProfile calls the UserInfo endpoint with the access
// token and returns the decoded claims. Numbers are kept as json.Number.
func (c *Client) FetchResourceOwnerProfile(ctx context.Context, token *oauth2.Token) (map[string]any, error) {
	if c.userInfoURL == "" {
		return nil, newProfileFetchError("could not fetch profile", 0, ErrNoUserinfoEndpoint)
	}
	if token == nil {
		return nil, newProfileFetchError("could not fetch profile", 0, ErrTokenNil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, newProfileFetchError("could not build userinfo request", 0, err)
	}
	req.Header.Set("Accept", "application/json")
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newProfileFetchError("userinfo request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProfileSize))
		return nil, newProfileFetchError(fmt.Sprintf("userinfo request failed with status %d", resp.StatusCode), resp.StatusCode, nil)
	}

	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxProfileSize))
	decoder.UseNumber()

	var profile map[string]any
	if err := decoder.Decode(&profile); err != nil {
		return nil, newProfileFetchError("could not decode userinfo response", resp.StatusCode, err)
	}
	if profile == nil {
		return nil, newProfileFetchError("userinfo response is not a JSON object", resp.StatusCode, nil)
	}

	return profile, nil
}

// GenerateVerifier returns a fresh PKCE code verifier.
func GenerateVerifier() string {
	return oauth2.GenerateVerifier()
}

func (c *Client) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}
