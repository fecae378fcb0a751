package oidc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// WellKnownPath is the discovery document path relative to the issuer.
const WellKnownPath = "/.well-known/openid-configuration"

// MaxDocumentSize caps how much of a discovery response is read.
const MaxDocumentSize = 1 << 20

// ErrDocumentTooLarge is returned when a discovery response exceeds MaxDocumentSize.
var ErrDocumentTooLarge = errors.New("well-known document too large")

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("well-known endpoint %s returned status %d", e.URL, e.StatusCode)
}

// WellKnownURL returns the discovery URL for the passed in issuer.
func WellKnownURL(issuer string) string {
	return strings.TrimRight(issuer, "/") + WellKnownPath
}

// GetWellKnownDocument fetches the raw discovery document for the passed in
// issuer. A single GET is issued; retries belong to the client's transport.
func GetWellKnownDocument(ctx context.Context, client *http.Client, issuer string) ([]byte, error) {
	wellKnownURL := WellKnownURL(issuer)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnownURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request to get well-known document: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch well-known document from %s: %w", wellKnownURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxDocumentSize))
		return nil, &StatusError{URL: wellKnownURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read well-known document body: %w", err)
	}
	if len(body) > MaxDocumentSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrDocumentTooLarge, wellKnownURL, MaxDocumentSize)
	}

	return body, nil
}
