package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultScopes is used when the file lists no scopes.
var DefaultScopes = []string{"openid", "profile", "email"}

// Validation errors.
var (
	ErrIssuerRequired        = errors.New("issuer is required")
	ErrClientIDRequired      = errors.New("client_id is required")
	ErrRedirectURIRequired   = errors.New("redirect_uri is required")
	ErrUnsupportedPKCEMethod = errors.New("pkce_method must be S256, plain or empty")
	ErrNegativeDuration      = errors.New("durations cannot be negative")
)

// Config holds everything needed to discover a provider and build a client.
type Config struct {
	Issuer       string   `yaml:"issuer"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURI  string   `yaml:"redirect_uri"`
	Scopes       []string `yaml:"scopes"`

	// PKCEMethod is "S256", "plain" or empty to disable PKCE.
	PKCEMethod string `yaml:"pkce_method"`

	// SubjectClaim names the claim holding the user identifier. Empty means "sub".
	SubjectClaim string `yaml:"subject_claim"`

	// HTTPTimeout bounds discovery, token and UserInfo requests. Zero keeps
	// the library defaults.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// CacheTTL enables discovery caching when positive.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// IssuerCheck rejects discovery documents whose issuer differs from Issuer.
	IssuerCheck bool `yaml:"issuer_check"`
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates YAML data. Unknown keys are rejected so typos
// surface early.
func Parse(data []byte) (*Config, error) {
	var c Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if len(c.Scopes) == 0 {
		c.Scopes = append([]string(nil), DefaultScopes...)
	}
}

// Validate checks required fields and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Issuer) == "" {
		errs = append(errs, ErrIssuerRequired)
	}
	if strings.TrimSpace(c.ClientID) == "" {
		errs = append(errs, ErrClientIDRequired)
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		errs = append(errs, ErrRedirectURIRequired)
	}
	switch c.PKCEMethod {
	case "", "S256", "plain":
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrUnsupportedPKCEMethod, c.PKCEMethod))
	}
	if c.HTTPTimeout < 0 || c.CacheTTL < 0 {
		errs = append(errs, ErrNegativeDuration)
	}

	return errors.Join(errs...)
}

// Marshal encodes the configuration back to YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
