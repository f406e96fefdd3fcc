package console

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the login and current-user flows. Every failure
// surfaces as a user-visible message at the call site; none is silently
// swallowed and none triggers an automatic retry.
var (
	// ErrTransport is a network or HTTP level failure reaching the API
	ErrTransport = errors.New("transport failure")

	// ErrAuthRejected is a structured non-success response body
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrMissingToken is a current-user request issued with no token.
	// It fails immediately and is never retried.
	ErrMissingToken = errors.New("not authenticated")

	// ErrMalformedResponse is a success status with a missing token or
	// admin payload. It is treated as a failure: the store is untouched.
	ErrMalformedResponse = errors.New("malformed response")
)

// FailureMessage maps a flow error to the message shown to the operator
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrAuthRejected):
		return rejectionMessage(err)
	case errors.Is(err, ErrMissingToken):
		return "You are not logged in"
	case errors.Is(err, ErrMalformedResponse):
		return "The server returned an unexpected response"
	case errors.Is(err, ErrTransport):
		return "Could not reach the server"
	case err == nil:
		return ""
	default:
		return "Login failed"
	}
}

// rejectionMessage extracts the server-provided message from a wrapped
// rejection, falling back to a generic line
func rejectionMessage(err error) string {
	var rej *RejectionError
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	return "Invalid email or password"
}

// RejectionError carries the server's message for a structured rejection
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return ErrAuthRejected.Error()
	}
	return fmt.Sprintf("%s: %s", ErrAuthRejected.Error(), e.Message)
}

// Unwrap links the rejection into the taxonomy for errors.Is checks
func (e *RejectionError) Unwrap() error {
	return ErrAuthRejected
}
