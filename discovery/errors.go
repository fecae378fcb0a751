package discovery

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for discovery failures. Use errors.Is to classify an
// error returned by Fetch.
var (
	// ErrDiscoveryUnreachable is matched when the discovery request failed
	// or the provider answered with a non-2xx status.
	ErrDiscoveryUnreachable = errors.New("discovery unreachable")

	// ErrMalformedMetadata is matched when the discovery document could not
	// be decoded or lacks a required field.
	ErrMalformedMetadata = errors.New("malformed provider metadata")
)

// ErrorKind classifies a discovery Error.
type ErrorKind string

const (
	KindDiscoveryUnreachable ErrorKind = "discovery_unreachable"
	KindMalformedMetadata    ErrorKind = "malformed_metadata"
)

// Error carries the details of a failed discovery.
type Error struct {
	// Kind is the machine-readable failure class.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// StatusCode is the HTTP status returned by the provider, or 0 when no
	// response was received.
	StatusCode int

	// MissingFields lists the JSON names of absent required fields.
	MissingFields []string

	// Details contains the underlying error, if any.
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
	case KindDiscoveryUnreachable:
		return target == ErrDiscoveryUnreachable
	case KindMalformedMetadata:
		return target == ErrMalformedMetadata
	}
	return false
}

func newUnreachableError(statusCode int, details error) *Error {
	msg := "discovery document unreachable"
	if statusCode != 0 {
		msg = fmt.Sprintf("discovery document unreachable (status %d)", statusCode)
	}
	return &Error{
		Kind:       KindDiscoveryUnreachable,
		Message:    msg,
		StatusCode: statusCode,
		Details:    details,
	}
}

func newMalformedError(message string, details error) *Error {
	return &Error{
		Kind:    KindMalformedMetadata,
		Message: message,
		Details: details,
	}
}

func newMissingFieldsError(missing []string) *Error {
	return &Error{
		Kind:          KindMalformedMetadata,
		Message:       "provider metadata is missing required fields: " + strings.Join(missing, ", "),
		MissingFields: missing,
	}
}
