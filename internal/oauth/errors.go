package oauth

import (
	"encoding/json"
	"fmt"
)

// OAuthExchangeError indicates that the backend rejected the
// authorization code (invalid, expired, or already consumed). Codes
// are single-use, so re-exchanging a spent code after a prior success
// fails with this error; the callback handler tolerates that via its
// re-entry latch.
type OAuthExchangeError struct {
	// StatusCode is the HTTP status returned by the backend.
	StatusCode int
	// Message is the most specific message the backend provided.
	Message string
}

// Error implements the error interface.
func (e *OAuthExchangeError) Error() string {
	return fmt.Sprintf("OAuth code exchange failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *OAuthExchangeError) Is(target error) bool {
	_, ok := target.(*OAuthExchangeError)
	return ok
}

// backendErrorBody is the error envelope the Codeset backend uses.
// Depending on the endpoint the message sits at detail.message or at
// the top level.
type backendErrorBody struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
	Message string `json:"message"`
}

// BackendErrorMessage extracts the most specific error message from a
// backend response body, tolerating non-JSON bodies. Precedence:
// detail.message, then message, then the fallback.
func BackendErrorMessage(body []byte, fallback string) string {
	var parsed backendErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail.Message != "" {
			return parsed.Detail.Message
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return fallback
}
