package oauth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTokenStore_StoreAndGet(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewTokenStore(TokenStoreConfig{
		StorageDir: tmpDir,
		FileMode:   false, // In-memory only for this test
	})
	if err != nil {
		t.Fatalf("Failed to create token store: %v", err)
	}

	serverURL := "https://api.codeset.ai/api/v1"

	if err := store.Store(serverURL, "access-1", "refresh-1"); err != nil {
		t.Fatalf("Failed to store tokens: %v", err)
	}

	if got := store.Get(serverURL); got != "access-1" {
		t.Errorf("Expected access token %q, got %q", "access-1", got)
	}
	if got := store.GetRefresh(serverURL); got != "refresh-1" {
		t.Errorf("Expected refresh token %q, got %q", "refresh-1", got)
	}
}

func TestTokenStore_LastWriteWins(t *testing.T) {
	store, err := NewTokenStore(TokenStoreConfig{StorageDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create token store: %v", err)
	}

	serverURL := "https://api.codeset.ai/api/v1"

	if err := store.Store(serverURL, "access-1", "refresh-1"); err != nil {
		t.Fatalf("Failed to store tokens: %v", err)
	}
	if err := store.Store(serverURL, "access-2", "refresh-2"); err != nil {
		t.Fatalf("Failed to store tokens: %v", err)
	}

	if got := store.Get(serverURL); got != "access-2" {
		t.Errorf("Expected last stored access token, got %q", got)
	}
	if got := store.GetRefresh(serverURL); got != "refresh-2" {
		t.Errorf("Expected last stored refresh token, got %q", got)
	}
}

func TestTokenStore_Clear(t *testing.T) {
	store, err := NewTokenStore(TokenStoreConfig{StorageDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create token store: %v", err)
	}

	serverURL := "https://api.codeset.ai/api/v1"

	if err := store.Store(serverURL, "access-1", "refresh-1"); err != nil {
		t.Fatalf("Failed to store tokens: %v", err)
	}
	if err := store.Clear(serverURL); err != nil {
		t.Fatalf("Failed to clear tokens: %v", err)
	}

	if got := store.Get(serverURL); got != "" {
		t.Errorf("Expected empty access token after clear, got %q", got)
	}
	if got := store.GetRefresh(serverURL); got != "" {
		t.Errorf("Expected empty refresh token after clear, got %q", got)
	}

	// Clearing again must be a no-op
	if err := store.Clear(serverURL); err != nil {
		t.Errorf("Clearing an empty store should not fail: %v", err)
	}
}

func TestTokenStore_GetMissing(t *testing.T) {
	store, err := NewTokenStore(TokenStoreConfig{StorageDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create token store: %v", err)
	}

	if got := store.Get("https://other.example.com"); got != "" {
		t.Errorf("Expected empty token for unknown server, got %q", got)
	}
}

func TestTokenStore_FilePersistence(t *testing.T) {
	tmpDir := t.TempDir()
	serverURL := "https://api.codeset.ai/api/v1"

	store, err := NewTokenStore(TokenStoreConfig{
		StorageDir: tmpDir,
		FileMode:   true,
	})
	if err != nil {
		t.Fatalf("Failed to create token store: %v", err)
	}

	if err := store.Store(serverURL, "persisted-access", "persisted-refresh"); err != nil {
		t.Fatalf("Failed to store tokens: %v", err)
	}

	// Verify file permissions
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read storage dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 token file, got %d", len(entries))
	}
	info, err := os.Stat(filepath.Join(tmpDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("Failed to stat token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected token file mode 0600, got %o", perm)
	}

	// A fresh store (simulating a new process) must read the file
	reopened, err := NewTokenStore(TokenStoreConfig{
		StorageDir: tmpDir,
		FileMode:   true,
	})
	if err != nil {
		t.Fatalf("Failed to reopen token store: %v", err)
	}

	if got := reopened.Get(serverURL); got != "persisted-access" {
		t.Errorf("Expected persisted access token, got %q", got)
	}
	if got := reopened.GetRefresh(serverURL); got != "persisted-refresh" {
		t.Errorf("Expected persisted refresh token, got %q", got)
	}
}

func TestTokenStore_SetAccessKeepsRefresh(t *testing.T) {
	store, err := NewTokenStore(TokenStoreConfig{StorageDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create token store: %v", err)
	}

	serverURL := "https://api.codeset.ai/api/v1"

	if err := store.Store(serverURL, "access-old", "refresh-keep"); err != nil {
		t.Fatalf("Failed to store tokens: %v", err)
	}
	if err := store.SetAccess(serverURL, "access-new"); err != nil {
		t.Fatalf("Failed to overwrite access token: %v", err)
	}

	if got := store.Get(serverURL); got != "access-new" {
		t.Errorf("Expected new access token, got %q", got)
	}
	if got := store.GetRefresh(serverURL); got != "refresh-keep" {
		t.Errorf("Refresh token must survive SetAccess, got %q", got)
	}
}
