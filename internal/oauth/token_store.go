package oauth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeset/pkg/logging"
)

// DefaultTokenStorageDir is the default directory for storing tokens.
const DefaultTokenStorageDir = ".config/codeset/tokens"

// TokenStore provides storage for Codeset session tokens, keyed by the
// backend base URL. It supports both file-based and in-memory storage.
//
// SECURITY: This store handles bearer credentials. Files are created
// with 0600 permissions, the storage directory with 0700, and token
// values are never logged.
//
// The backend is the only party that tracks token expiry; the store
// returns tokens exactly as written.
type TokenStore struct {
	mu         sync.RWMutex
	storageDir string
	tokens     map[string]*StoredTokens // In-memory cache
	fileMode   bool                     // Whether to persist to files
}

// StoredTokens is the persisted session token pair.
type StoredTokens struct {
	// AccessToken is the bearer access token.
	AccessToken string `json:"access_token"`

	// RefreshToken is the refresh token (if available).
	RefreshToken string `json:"refresh_token,omitempty"`

	// ServerURL is the backend base URL these tokens authenticate to.
	ServerURL string `json:"server_url"`

	// CreatedAt is when the tokens were stored.
	CreatedAt time.Time `json:"created_at"`
}

// TokenStoreConfig configures the token store.
type TokenStoreConfig struct {
	// StorageDir is the directory for storing token files.
	// Defaults to ~/.config/codeset/tokens
	StorageDir string

	// FileMode enables file-based persistence. If false, tokens are in-memory only.
	FileMode bool
}

// NewTokenStore creates a new token store with the specified configuration.
func NewTokenStore(cfg TokenStoreConfig) (*TokenStore, error) {
	storageDir := cfg.StorageDir
	if storageDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		storageDir = filepath.Join(homeDir, DefaultTokenStorageDir)
	}

	store := &TokenStore{
		storageDir: storageDir,
		tokens:     make(map[string]*StoredTokens),
		fileMode:   cfg.FileMode,
	}

	// Create storage directory if file mode is enabled
	if cfg.FileMode {
		if err := os.MkdirAll(storageDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create token storage directory: %w", err)
		}
	}

	return store, nil
}

// Store persists the session token pair for a backend.
// A second Store for the same backend overwrites the first.
func (s *TokenStore) Store(serverURL, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := &StoredTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ServerURL:    serverURL,
		CreatedAt:    time.Now(),
	}

	key := s.tokenKey(serverURL)
	s.tokens[key] = stored

	if s.fileMode {
		if err := s.writeTokenFile(key, stored); err != nil {
			logging.Warn("TokenStore", "Failed to persist tokens for %s: %v", serverURL, err)
			return fmt.Errorf("failed to persist tokens: %w", err)
		}
		logging.Debug("TokenStore", "Stored tokens for %s (refresh token present: %t)", serverURL, refreshToken != "")
	}

	return nil
}

// Get returns the stored access token for a backend, or "" when none
// exists. Storage failures are swallowed: an unreadable token file is
// indistinguishable from being logged out.
func (s *TokenStore) Get(serverURL string) string {
	if t := s.get(serverURL); t != nil {
		return t.AccessToken
	}
	return ""
}

// GetRefresh returns the stored refresh token for a backend, or "".
func (s *TokenStore) GetRefresh(serverURL string) string {
	if t := s.get(serverURL); t != nil {
		return t.RefreshToken
	}
	return ""
}

func (s *TokenStore) get(serverURL string) *StoredTokens {
	key := s.tokenKey(serverURL)

	// Fast path with read lock - check memory cache
	s.mu.RLock()
	if tokens, ok := s.tokens[key]; ok {
		s.mu.RUnlock()
		return tokens
	}
	s.mu.RUnlock()

	if !s.fileMode {
		return nil
	}

	// Slow path with write lock for cache population
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check in case another goroutine populated it
	if tokens, ok := s.tokens[key]; ok {
		return tokens
	}

	tokens, err := s.readTokenFile(key)
	if err != nil {
		return nil
	}
	s.tokens[key] = tokens
	return tokens
}

// SetAccess overwrites only the access token, keeping the refresh
// token. Used after a successful refresh.
func (s *TokenStore) SetAccess(serverURL, accessToken string) error {
	refresh := s.GetRefresh(serverURL)
	return s.Store(serverURL, accessToken, refresh)
}

// Clear removes the stored tokens for a backend. Clearing an already
// empty store is a no-op.
func (s *TokenStore) Clear(serverURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.tokenKey(serverURL)
	delete(s.tokens, key)

	if s.fileMode {
		if err := s.deleteTokenFile(key); err != nil {
			logging.Warn("TokenStore", "Failed to delete token file for %s: %v", serverURL, err)
			return err
		}
	}

	logging.Debug("TokenStore", "Cleared tokens for %s", serverURL)
	return nil
}

// tokenKey generates a unique key for a backend URL.
// Uses SHA256 hash to create filesystem-safe identifiers.
func (s *TokenStore) tokenKey(serverURL string) string {
	hash := sha256.Sum256([]byte(serverURL))
	return hex.EncodeToString(hash[:16]) // Use first 16 bytes (32 hex chars)
}

// writeTokenFile persists tokens to a JSON file.
func (s *TokenStore) writeTokenFile(key string, tokens *StoredTokens) error {
	filePath := filepath.Join(s.storageDir, key+".json")

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// readTokenFile reads tokens from a JSON file.
func (s *TokenStore) readTokenFile(key string) (*StoredTokens, error) {
	filePath := filepath.Join(s.storageDir, key+".json")

	// #nosec G304 -- filePath is constructed from internal key, not user input
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var tokens StoredTokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tokens: %w", err)
	}

	return &tokens, nil
}

// deleteTokenFile removes a token file.
func (s *TokenStore) deleteTokenFile(key string) error {
	filePath := filepath.Join(s.storageDir, key+".json")
	err := os.Remove(filePath)
	if os.IsNotExist(err) {
		return nil // Already deleted
	}
	return err
}

// HasTokens reports whether any tokens are stored for a backend.
func (s *TokenStore) HasTokens(serverURL string) bool {
	return s.get(serverURL) != nil
}
