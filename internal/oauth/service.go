package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"codeset/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// oauthScope is the GitHub scope requested during authorization.
const oauthScope = "user:email"

// Service wraps the Codeset backend's auth endpoints: GitHub OAuth
// code exchange, token refresh, current-user fetch, and logout. It is
// safe for concurrent use; all mutable state lives in the TokenStore.
type Service struct {
	apiURL      string
	clientID    string
	redirectURI string
	store       *TokenStore
	httpClient  *http.Client
}

// ServiceConfig configures the auth service.
type ServiceConfig struct {
	// APIURL is the backend base URL (e.g. https://api.codeset.ai/api/v1).
	APIURL string

	// GitHubClientID is the OAuth client id of the Codeset GitHub app.
	GitHubClientID string

	// RedirectURI is where GitHub redirects after authorization.
	RedirectURI string

	// TokenStore holds the session tokens. Required.
	TokenStore *TokenStore

	// HTTPClient overrides the HTTP client (tests). Defaults to a
	// client with a 30s timeout.
	HTTPClient *http.Client
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.TokenStore == nil {
		return nil, errors.New("token store is required")
	}
	if cfg.APIURL == "" {
		return nil, errors.New("API URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Service{
		apiURL:      cfg.APIURL,
		clientID:    cfg.GitHubClientID,
		redirectURI: cfg.RedirectURI,
		store:       cfg.TokenStore,
		httpClient:  httpClient,
	}, nil
}

// AccessToken returns the stored bearer token, or "" when logged out.
func (s *Service) AccessToken() string {
	return s.store.Get(s.apiURL)
}

// AuthorizationURL constructs the GitHub authorize URL with a fresh
// random state nonce, returning the URL and the nonce. Fails when no
// client id is configured, since the flow cannot start without one.
func (s *Service) AuthorizationURL() (string, string, error) {
	if s.clientID == "" {
		return "", "", errors.New("GitHub client id not configured (set github_client_id in config.yaml or CODESET_GITHUB_CLIENT_ID)")
	}

	state := uuid.NewString()
	cfg := &oauth2.Config{
		ClientID:    s.clientID,
		Endpoint:    githuboauth.Endpoint,
		RedirectURL: s.redirectURI,
		Scopes:      []string{oauthScope},
	}
	return cfg.AuthCodeURL(state), state, nil
}

// ExchangeCode posts the authorization code to the backend and stores
// the returned token pair. The code is single-use on the backend: a
// second exchange of the same code fails with *OAuthExchangeError even
// if the first succeeded.
func (s *Service) ExchangeCode(ctx context.Context, code, state string) (*SessionInfo, error) {
	payload := map[string]string{"code": code}
	if state != "" {
		payload["state"] = state
	}

	resp, body, err := s.postJSON(ctx, s.apiURL+"/auth/github", payload)
	if err != nil {
		return nil, fmt.Errorf("OAuth exchange request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &OAuthExchangeError{
			StatusCode: resp.StatusCode,
			Message:    BackendErrorMessage(body, "GitHub OAuth failed"),
		}
	}

	var session SessionInfo
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode OAuth exchange response: %w", err)
	}

	if err := s.store.Store(s.apiURL, session.AccessToken, session.RefreshToken); err != nil {
		return nil, err
	}
	logging.Debug("AuthService", "OAuth exchange succeeded (new user: %t)", session.IsNewUser)
	return &session, nil
}

// RefreshAccessToken exchanges the stored refresh token for a new
// access token. On any failure (network, 4xx) it clears both tokens
// and returns (nil, nil); refresh is never retried, so a broken
// refresh token cannot loop. Returns (nil, nil) as well when no
// refresh token is stored.
func (s *Service) RefreshAccessToken(ctx context.Context) (*TokenRefresh, error) {
	refreshToken := s.store.GetRefresh(s.apiURL)
	if refreshToken == "" {
		return nil, nil
	}

	resp, body, err := s.postJSON(ctx, s.apiURL+"/auth/refresh", map[string]string{"refresh_token": refreshToken})
	if err != nil {
		logging.Debug("AuthService", "Token refresh request failed: %v", err)
		_ = s.store.Clear(s.apiURL)
		return nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Debug("AuthService", "Token refresh rejected with HTTP %d", resp.StatusCode)
		_ = s.store.Clear(s.apiURL)
		return nil, nil
	}

	var refreshed TokenRefresh
	if err := json.Unmarshal(body, &refreshed); err != nil {
		_ = s.store.Clear(s.apiURL)
		return nil, nil
	}

	if err := s.store.SetAccess(s.apiURL, refreshed.AccessToken); err != nil {
		return nil, err
	}
	return &refreshed, nil
}

// CurrentUser fetches the authenticated user from /users/me. A 401 is
// answered with exactly one refresh-and-retry. Returns (nil, nil) when
// no token is stored or the session is unrecoverable: being logged out
// is not an error.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, nil
	}

	user, status, err := s.fetchUser(ctx, token)
	if err != nil {
		return nil, nil
	}
	if status == http.StatusUnauthorized {
		refreshed, err := s.RefreshAccessToken(ctx)
		if err != nil || refreshed == nil {
			return nil, nil
		}
		user, status, err = s.fetchUser(ctx, refreshed.AccessToken)
		if err != nil || status != http.StatusOK {
			return nil, nil
		}
		return user, nil
	}
	if status != http.StatusOK {
		return nil, nil
	}
	return user, nil
}

func (s *Service) fetchUser(ctx context.Context, token string) (*User, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/users/me", nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, resp.StatusCode, err
	}
	return &user, resp.StatusCode, nil
}

// Logout clears the stored tokens. The backend is not called: bearer
// logout is stateless.
func (s *Service) Logout() error {
	return s.store.Clear(s.apiURL)
}

// HasTokens reports whether a session token pair is stored.
func (s *Service) HasTokens() bool {
	return s.store.HasTokens(s.apiURL)
}

func (s *Service) postJSON(ctx context.Context, url string, payload interface{}) (*http.Response, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
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
