package authcode

import (
	"errors"

	"golang.org/x/oauth2"
)

// Sentinel errors for runtime failures. Use errors.Is to classify an error;
// errors.As still reaches the transport error underneath (for example
// *oauth2.RetrieveError).
var (
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrProfileFetchFailed  = errors.New("profile fetch failed")
)

// ErrorKind classifies an Error.
type ErrorKind string

const (
	KindTokenExchangeFailed ErrorKind = "token_exchange_failed"
	KindProfileFetchFailed  ErrorKind = "profile_fetch_failed"
)

// Error wraps a failure reported by the provider or the transport.
type Error struct {
	Kind    ErrorKind
	Message string

	// StatusCode is the provider's HTTP status, or 0 when unknown.
	StatusCode int

	Details error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Details
}

// Is matches the sentinel that corresponds to the error's Kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindTokenExchangeFailed:
		return target == ErrTokenExchangeFailed
	case KindProfileFetchFailed:
		return target == ErrProfileFetchFailed
	}
	return false
}

func newTokenExchangeError(err error) *Error {
	e := &Error{
		Kind:    KindTokenExchangeFailed,
		Message: "token exchange failed",
		Details: err,
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		e.StatusCode = retrieveErr.Response.StatusCode
	}
	return e
}

func newProfileFetchError(message string, statusCode int, err error) *Error {
	return &Error{
		Kind:       KindProfileFetchFailed,
		Message:    message,
		StatusCode: statusCode,
		Details:    err,
	}
}
