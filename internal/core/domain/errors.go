package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	// ErrConfiguration indicates the identity client could not be set up.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNoAccount indicates no signed-in account is available.
	ErrNoAccount = errors.New("no signed-in account")

	// ErrTokenAcquisition indicates a token could not be obtained, silently
	// or interactively.
	ErrTokenAcquisition = errors.New("token acquisition failed")

	// ErrInteractionRequired indicates silent acquisition was refused and the
	// user must interact with the identity provider.
	ErrInteractionRequired = errors.New("interaction required")

	// ErrRedirectPending indicates an interactive redirect was started.
	// The result is delivered by CompleteRedirect, not by the current call.
	ErrRedirectPending = errors.New("redirect in progress, complete sign-in in the browser")

	// ErrRedirectState indicates a redirect response did not match any
	// pending request, or the pending request has expired.
	ErrRedirectState = errors.New("redirect state mismatch")

	// ErrHTTP indicates a Graph request failed in transport or returned a
	// body that is not JSON.
	ErrHTTP = errors.New("graph request failed")

	// ErrNotFound indicates a stored item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.New("invalid input")
)

// HTTPError describes a failed Graph request.
type HTTPError struct {
	// URL is the requested endpoint.
	URL string
	// StatusCode is the HTTP status, zero on transport failure.
	StatusCode int
	// Code and Message come from the Graph error body, when present.
	Code    string
	Message string
	// Err is the underlying cause.
	Err error
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("GET %s", e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Code != "" {
		msg += fmt.Sprintf(": %s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrHTTP and the underlying cause to errors.Is.
func (e *HTTPError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrHTTP}
	}
	return []error{ErrHTTP, e.Err}
}
