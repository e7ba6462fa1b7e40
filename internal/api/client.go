package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"codeset/internal/oauth"
	"codeset/pkg/logging"
)

// Authenticator supplies the bearer token and the one-shot refresh the
// client falls back to on a 401. Implemented by *oauth.Service.
type Authenticator interface {
	// AccessToken returns the current bearer token, or "" when logged out.
	AccessToken() string

	// RefreshAccessToken exchanges the refresh token for a new access
	// token, returning (nil, nil) when the session is unrecoverable.
	RefreshAccessToken(ctx context.Context) (*oauth.TokenRefresh, error)
}

// Client is the typed HTTP client for the Codeset backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       Authenticator
}

// ClientConfig configures the API client.
type ClientConfig struct {
	// BaseURL is the backend base URL (e.g. https://api.codeset.ai/api/v1).
	BaseURL string

	// Auth supplies tokens and refresh. Required.
	Auth Authenticator

	// HTTPClient overrides the HTTP client (tests). Defaults to a
	// client with a 30s timeout.
	HTTPClient *http.Client
}

// NewClient creates a new API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Auth == nil {
		return nil, fmt.Errorf("authenticator is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		auth:       cfg.Auth,
	}, nil
}

// do performs one backend request. The bearer token is attached when
// present; a 401 triggers exactly one refresh and, if it succeeds, one
// retry of the original request. A 401 on the retry surfaces
// *AuthenticationError without a further refresh, so a broken session
// cannot loop.
//
// Concurrent calls that each see a 401 each trigger their own refresh;
// there is deliberately no single-flight coordination. Refresh is
// idempotent on the backend, so this is wasteful but correct.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out interface{}, needAuth bool) error {
	token := c.auth.AccessToken()
	if needAuth && token == "" {
		return &NoTokenError{}
	}

	resp, body, err := c.send(ctx, method, path, query, payload, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		refreshed, err := c.auth.RefreshAccessToken(ctx)
		if err != nil || refreshed == nil {
			return &AuthenticationError{}
		}
		logging.Debug("APIClient", "Retrying %s %s after token refresh", method, path)
		resp, body, err = c.send(ctx, method, path, query, payload, refreshed.AccessToken)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthenticationError{}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &BackendRequestError{
			StatusCode: resp.StatusCode,
			Message:    oauth.BackendErrorMessage(body, fmt.Sprintf("request to %s failed", path)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload interface{}, token string) (*http.Response, []byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}
