package cmd

import (
	"context"
	"fmt"

	"codeset/internal/api"
	"codeset/internal/cli"
	"codeset/internal/config"
	"codeset/internal/oauth"
	"codeset/internal/session"
)

// app bundles the wired services behind every command: configuration,
// the auth service, the typed API client, and the session manager.
// It is constructed per invocation; nothing is cached across runs.
type app struct {
	cfg     config.Config
	store   *oauth.TokenStore
	auth    *oauth.Service
	client  *api.Client
	session *session.Manager
}

// newApp loads configuration and wires the service stack.
func newApp() (*app, error) {
	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := oauth.NewTokenStore(oauth.TokenStoreConfig{StorageDir: cfg.TokenDir, FileMode: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	authService, err := oauth.NewService(oauth.ServiceConfig{
		APIURL:         cfg.APIURL,
		GitHubClientID: cfg.GitHubClientID,
		RedirectURI:    fmt.Sprintf("http://localhost:%d/auth/callback", cfg.CallbackPort),
		TokenStore:     store,
	})
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.ClientConfig{
		BaseURL: cfg.APIURL,
		Auth:    authService,
	})
	if err != nil {
		return nil, err
	}

	manager, err := session.NewManager(session.ManagerConfig{
		Auth:         authService,
		CallbackPort: cfg.CallbackPort,
		Notify: func(format string, args ...interface{}) {
			fmt.Printf(format+"\n", args...)
		},
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		store:   store,
		auth:    authService,
		client:  client,
		session: manager,
	}, nil
}

// requireUser resolves the stored session and fails with auth guidance
// when no user is logged in.
func (a *app) requireUser(ctx context.Context) (*oauth.User, error) {
	if err := a.session.Init(ctx); err != nil {
		return nil, err
	}
	user := a.session.User()
	if user == nil {
		return nil, &cli.AuthRequiredError{}
	}
	return user, nil
}
