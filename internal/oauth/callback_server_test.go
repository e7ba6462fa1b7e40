package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestCallbackServer_ReceivesCode(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := NewCallbackServer(0, "xyz")

	redirectURI, err := server.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start callback server: %v", err)
	}
	defer server.Stop()

	if !strings.HasSuffix(redirectURI, "/auth/callback") {
		t.Errorf("Redirect URI must end with /auth/callback, got %s", redirectURI)
	}

	// Simulate the provider redirect
	resp, err := http.Get(fmt.Sprintf("%s?code=abc123&state=xyz", redirectURI))
	if err != nil {
		t.Fatalf("Failed to hit callback endpoint: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Login successful") {
		t.Errorf("Expected success page, got: %s", body)
	}

	result, err := server.WaitForCallback(ctx)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}
	if result.Code != "abc123" {
		t.Errorf("Expected code abc123, got %q", result.Code)
	}
	if result.State != "xyz" {
		t.Errorf("Expected state xyz, got %q", result.State)
	}
	if result.IsError() {
		t.Error("Result should not be an error")
	}
}

func TestCallbackServer_ErrorRedirect(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := NewCallbackServer(0, "")

	redirectURI, err := server.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start callback server: %v", err)
	}
	defer server.Stop()

	resp, err := http.Get(fmt.Sprintf("%s?error=access_denied&error_description=user+cancelled", redirectURI))
	if err != nil {
		t.Fatalf("Failed to hit callback endpoint: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), "access_denied") {
		t.Errorf("Expected error page with error code, got: %s", body)
	}

	result, err := server.WaitForCallback(ctx)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}
	if !result.IsError() {
		t.Error("Result should be an error")
	}
	if result.Error != "access_denied" {
		t.Errorf("Expected access_denied, got %q", result.Error)
	}
	if result.ErrorDescription != "user cancelled" {
		t.Errorf("Expected decoded description, got %q", result.ErrorDescription)
	}
}

func TestCallbackServer_SecondRequestRejected(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := NewCallbackServer(0, "")

	redirectURI, err := server.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start callback server: %v", err)
	}
	defer server.Stop()

	first, err := http.Get(redirectURI + "?code=first")
	if err != nil {
		t.Fatalf("First request failed: %v", err)
	}
	first.Body.Close()

	second, err := http.Get(redirectURI + "?code=second")
	if err != nil {
		// The server may already be shutting down; that also counts
		// as rejecting the duplicate.
		return
	}
	defer second.Body.Close()

	if second.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected duplicate callback to be rejected with 400, got %d", second.StatusCode)
	}
}

func TestCallbackServer_RejectsForgedState(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := NewCallbackServer(0, "nonce-1")
	redirectURI, err := server.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start callback server: %v", err)
	}
	defer server.Stop()

	resp, err := http.Get(redirectURI + "?code=stolen&state=forged")
	if err != nil {
		t.Fatalf("Failed to hit callback endpoint: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), "state_mismatch") {
		t.Errorf("Expected the error page for a forged state, got: %s", body)
	}

	result, err := server.WaitForCallback(ctx)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}
	if !result.IsError() || result.Error != "state_mismatch" {
		t.Errorf("Expected state_mismatch result, got %+v", result)
	}
	if result.Code != "" {
		t.Error("The authorization code must be discarded on a state mismatch")
	}
}
