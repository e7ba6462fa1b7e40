package api

import "fmt"

// NoTokenError indicates an authenticated operation was attempted with
// no stored credential. Callers should treat it as "not logged in"
// rather than a failure.
type NoTokenError struct{}

// Error implements the error interface.
func (e *NoTokenError) Error() string {
	return "no authentication token found"
}

// Is allows errors.Is() to work with wrapped errors.
func (e *NoTokenError) Is(target error) bool {
	_, ok := target.(*NoTokenError)
	return ok
}

// AuthenticationError indicates a 401 that survived one token refresh
// attempt. The session is unrecoverable without a fresh login.
type AuthenticationError struct{}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return "authentication failed"
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthenticationError) Is(target error) bool {
	_, ok := target.(*AuthenticationError)
	return ok
}

// BackendRequestError is any other non-2xx backend response, carrying
// the most specific message the backend provided.
type BackendRequestError struct {
	// StatusCode is the HTTP status returned by the backend.
	StatusCode int
	// Message is the parsed backend message, or a generic fallback.
	Message string
}

// Error implements the error interface.
func (e *BackendRequestError) Error() string {
	return fmt.Sprintf("backend request failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *BackendRequestError) Is(target error) bool {
	_, ok := target.(*BackendRequestError)
	return ok
}
