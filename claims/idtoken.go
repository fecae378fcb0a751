package claims

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// FromIDToken decodes the payload of a compact ID token and wraps it in an
// Identity. The signature, issuer, audience and expiry are NOT checked;
// only use the result for display or after the token has been validated
// elsewhere.
func FromIDToken(raw string, opts ...Option) (*Identity, error) {
	tok, err := jwt.ParseString(raw, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, fmt.Errorf("could not decode ID token: %w", err)
	}

	payload, err := tok.AsMap(context.Background())
	if err != nil {
		return nil, fmt.Errorf("could not read ID token claims: %w", err)
	}

	return New(payload, opts...), nil
}
