package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeset/internal/oauth"
	"codeset/pkg/logging"
)

// DefaultLoginTimeout bounds the wait for the browser redirect.
const DefaultLoginTimeout = 5 * time.Minute

// AuthService is the slice of *oauth.Service the manager needs.
type AuthService interface {
	CurrentUser(ctx context.Context) (*oauth.User, error)
	AuthorizationURL() (string, string, error)
	ExchangeCode(ctx context.Context, code, state string) (*oauth.SessionInfo, error)
	Logout() error
}

// callbackServer is the slice of *oauth.CallbackServer used during
// login, behind an interface so tests can script the redirect.
type callbackServer interface {
	Start(ctx context.Context) (string, error)
	WaitForCallback(ctx context.Context) (*oauth.CallbackResult, error)
	Stop()
}

// Manager tracks the authenticated user for the lifetime of one
// command invocation. A nil user means "not logged in"; it is never an
// error condition.
type Manager struct {
	mu      sync.RWMutex
	auth    AuthService
	user    *oauth.User
	loading bool

	callbackPort int
	loginTimeout time.Duration
	openBrowser  func(url string) error
	newCallback  func(port int, state string) callbackServer
	notify       func(format string, args ...interface{})
}

// ManagerConfig configures a session manager.
type ManagerConfig struct {
	// Auth is the auth service. Required.
	Auth AuthService

	// CallbackPort is the loopback port for the OAuth redirect.
	CallbackPort int

	// LoginTimeout bounds the wait for the browser redirect. Defaults
	// to DefaultLoginTimeout.
	LoginTimeout time.Duration

	// OpenBrowser opens a URL in the user's browser. Defaults to
	// oauth.OpenBrowser.
	OpenBrowser func(url string) error

	// Notify receives user-facing progress messages during login.
	// Defaults to a no-op.
	Notify func(format string, args ...interface{})
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}

	m := &Manager{
		auth:         cfg.Auth,
		callbackPort: cfg.CallbackPort,
		loginTimeout: cfg.LoginTimeout,
		openBrowser:  cfg.OpenBrowser,
		notify:       cfg.Notify,
		newCallback: func(port int, state string) callbackServer {
			return oauth.NewCallbackServer(port, state)
		},
	}
	if m.loginTimeout <= 0 {
		m.loginTimeout = DefaultLoginTimeout
	}
	if m.openBrowser == nil {
		m.openBrowser = oauth.OpenBrowser
	}
	if m.notify == nil {
		m.notify = func(string, ...interface{}) {}
	}
	return m, nil
}

// Init resolves the stored tokens to a user. A stored token is always
// tried against the backend before the user is treated as logged out.
// Network-level failures are returned; "no valid session" is not.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	user, err := m.auth.CurrentUser(ctx)

	m.mu.Lock()
	m.loading = false
	if err == nil {
		m.user = user
	}
	m.mu.Unlock()
	return err
}

// Login runs the interactive OAuth flow: start the loopback callback
// server, open the GitHub authorization page, wait for the redirect,
// exchange the code through the one-shot callback handler, then fetch
// the user. Blocks until the flow finishes, the timeout fires, or ctx
// is cancelled.
func (m *Manager) Login(ctx context.Context) error {
	authURL, state, err := m.auth.AuthorizationURL()
	if err != nil {
		return err
	}

	// The server verifies the state nonce; a forged redirect surfaces
	// as an error result and never reaches the exchange.
	server := m.newCallback(m.callbackPort, state)
	if _, err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer server.Stop()

	m.notify("Opening browser for GitHub authorization...")
	if err := m.openBrowser(authURL); err != nil {
		logging.Warn("Session", "Failed to open browser: %v", err)
		m.notify("Could not open a browser. Visit this URL to continue:\n\n  %s", authURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.loginTimeout)
	defer cancel()

	result, err := server.WaitForCallback(waitCtx)
	if err != nil {
		return fmt.Errorf("did not receive authorization callback: %w", err)
	}

	handler := oauth.NewCallbackHandler(func(ctx context.Context, code, callbackState string) error {
		_, err := m.auth.ExchangeCode(ctx, code, callbackState)
		return err
	})
	if handler.Handle(ctx, result) != oauth.StateSuccess {
		return fmt.Errorf("authorization failed: %s", handler.Err())
	}

	return m.RefreshUser(ctx)
}

// Logout clears the stored tokens and the cached user. No backend
// call is made; the refresh token is simply abandoned.
func (m *Manager) Logout() error {
	if err := m.auth.Logout(); err != nil {
		return err
	}
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
	return nil
}

// RefreshUser re-fetches the account and overwrites the cached user.
// Called after every mutation (key create/revoke, deposit) instead of
// editing local state.
func (m *Manager) RefreshUser(ctx context.Context) error {
	user, err := m.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	return nil
}

// User returns the cached user, nil when unauthenticated.
func (m *Manager) User() *oauth.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Loading reports whether Init is in flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}
