package oauth

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// callbackPath is the redirect target registered with the GitHub app.
const callbackPath = "/auth/callback"

// shutdownDelay gives the browser time to read the rendered page
// before the listener goes away.
const shutdownDelay = 1 * time.Second

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

var (
	callbackSuccessPage = template.Must(template.New("success").Parse(callbackSuccessHTML))
	callbackErrorPage   = template.Must(template.New("error").Parse(callbackErrorHTML))
)

// CallbackResult represents the outcome of the GitHub redirect.
type CallbackResult struct {
	// Code is the authorization code from GitHub.
	Code string

	// State is the state parameter echoed back by GitHub.
	State string

	// Error is the error code if the authorization failed.
	Error string

	// ErrorDescription is a human-readable error description.
	ErrorDescription string
}

// IsError returns true if the callback result represents an error.
func (r *CallbackResult) IsError() bool {
	return r.Error != ""
}

// CallbackServer is a short-lived loopback HTTP server that receives
// the GitHub redirect for one login attempt. It answers exactly one
// redirect, verifies the CSRF state nonce against the one sent in the
// authorize URL, renders a result page for the browser, and then
// shuts itself down.
type CallbackServer struct {
	port          int
	expectedState string
	baseURL       string
	server        *http.Server
	listener      net.Listener
	results       chan *CallbackResult
	once          sync.Once
}

// NewCallbackServer creates a callback server for one login attempt.
// Port 0 binds an OS-chosen free port. expectedState is the nonce from
// AuthorizationURL; redirects with a different state are rejected
// before the code reaches the exchange.
func NewCallbackServer(port int, expectedState string) *CallbackServer {
	return &CallbackServer{
		port:          port,
		expectedState: expectedState,
		results:       make(chan *CallbackResult, 1),
	}
}

// Start binds the loopback listener and begins serving. The server
// stops when the redirect has been handled or ctx is cancelled,
// whichever comes first. Returns the redirect URI for the authorize
// request.
func (s *CallbackServer) Start(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on port %d: %w", s.port, err)
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port
	s.baseURL = fmt.Sprintf("http://localhost:%d", s.port)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, s.serveRedirect)
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() { _ = s.server.Serve(listener) }()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s.baseURL + callbackPath, nil
}

// WaitForCallback blocks until the redirect arrives or ctx expires.
func (s *CallbackServer) WaitForCallback(ctx context.Context) (*CallbackResult, error) {
	select {
	case result := <-s.results:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// serveRedirect answers the single expected redirect; any later hit on
// the path (browser refresh, prefetch) gets a 400 instead of a second
// result.
func (s *CallbackServer) serveRedirect(w http.ResponseWriter, r *http.Request) {
	delivered := false
	s.once.Do(func() {
		delivered = true
		result := s.resultFromQuery(r.URL.Query())
		s.renderResultPage(w, result)
		s.results <- result

		// The response must flush before the listener closes.
		time.AfterFunc(shutdownDelay, s.Stop)
	})

	if !delivered {
		http.Error(w, "callback already processed", http.StatusBadRequest)
	}
}

// resultFromQuery parses the redirect parameters and applies the CSRF
// check: a redirect whose state does not match the nonce we sent to
// GitHub is not a response to our authorize request, so its code is
// discarded unseen.
func (s *CallbackServer) resultFromQuery(query url.Values) *CallbackResult {
	result := &CallbackResult{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	if !result.IsError() && s.expectedState != "" && result.State != s.expectedState {
		return &CallbackResult{
			Error:            "state_mismatch",
			ErrorDescription: "authorization state did not match, please retry the login",
		}
	}
	return result
}

func (s *CallbackServer) renderResultPage(w http.ResponseWriter, result *CallbackResult) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var err error
	if result.IsError() {
		err = callbackErrorPage.Execute(w, map[string]string{
			"Error":       result.Error,
			"Description": result.ErrorDescription,
		})
	} else {
		err = callbackSuccessPage.Execute(w, nil)
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Stop shuts the server down. Safe to call more than once.
func (s *CallbackServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// RedirectURI returns the redirect URI once Start has bound a port.
func (s *CallbackServer) RedirectURI() string {
	return s.baseURL + callbackPath
}
