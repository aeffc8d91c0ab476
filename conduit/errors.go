package conduit

import (
	"errors"
	"fmt"
)

var (
	// ErrNilData is returned when the transport produced a response
	// without a body.
	ErrNilData = errors.New("conduit: transport returned no body")

	// ErrNonHTTPResponse is returned when the transport completed without
	// error but did not produce an HTTP response.
	ErrNonHTTPResponse = errors.New("conduit: transport returned a non-HTTP response")

	// ErrRestartLimit is returned when a send exceeds the configured
	// restart budget. This usually indicates a decision list that
	// restarts unconditionally.
	ErrRestartLimit = errors.New("conduit: restart limit exceeded")
)

// TokenError reports an authentication failure, typically from a failed
// token refresh cycle.
type TokenError struct {
	// Reason describes the failing operation.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// NewTokenError creates a TokenError wrapping the given cause.
func NewTokenError(reason string, err error) *TokenError {
	return &TokenError{Reason: reason, Err: err}
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conduit: token error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("conduit: token error: %s", e.Reason)
}

// Unwrap returns the underlying cause.
func (e *TokenError) Unwrap() error {
	return e.Err
}

// APIError reports a response rejected by a status-validation decision.
// Payload holds the decoded error body.
type APIError struct {
	// StatusCode is the HTTP status code of the rejected response.
	StatusCode int

	// Payload is the decoded error body. If the body could not be
	// decoded, Payload holds the raw body as a string.
	Payload any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("conduit: api error: status %d: %v", e.StatusCode, e.Payload)
}
