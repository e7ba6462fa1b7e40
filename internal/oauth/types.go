package oauth

// User is the authenticated Codeset account as returned by GET /users/me.
// It is always fetched fresh from the backend; the CLI never mutates it
// locally. A change (e.g. a new key) is followed by a full re-fetch.
type User struct {
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	GitHubID    string   `json:"github_id,omitempty"`
	APIKeys     []APIKey `json:"api_keys"`
	CreatedAt   string   `json:"created_at"`
	LastLoginAt string   `json:"last_login_at,omitempty"`
	IsActive    bool     `json:"is_active"`
}

// APIKey is a Codeset API key. The raw secret in Key is only ever
// delivered once, in the creation response; the key list embedded in
// User carries it for masking purposes only.
type APIKey struct {
	KeyID      string `json:"key_id"`
	Key        string `json:"key"`
	Name       string `json:"name,omitempty"`
	CreatedAt  string `json:"created_at"`
	ExpiresAt  string `json:"expires_at,omitempty"`
	IsActive   bool   `json:"is_active"`
	LastUsedAt string `json:"last_used_at,omitempty"`
}

// SessionInfo is the response of POST /auth/github.
type SessionInfo struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	IsNewUser    bool   `json:"is_new_user"`
}

// TokenRefresh is the response of POST /auth/refresh.
type TokenRefresh struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
