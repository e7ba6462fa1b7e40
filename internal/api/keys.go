package api

import (
	"context"
	"net/http"

	"codeset/internal/oauth"
)

type createAPIKeyRequest struct {
	Name string `json:"name"`
}

type createAPIKeyResponse struct {
	APIKey oauth.APIKey `json:"api_key"`
}

// CreateAPIKey creates a new API key. The returned key carries the raw
// secret; the backend never returns it again, so callers must show it
// to the user immediately.
func (c *Client) CreateAPIKey(ctx context.Context, name string) (*oauth.APIKey, error) {
	var resp createAPIKeyResponse
	if err := c.do(ctx, http.MethodPost, "/users/me/api-keys", nil, createAPIKeyRequest{Name: name}, &resp, true); err != nil {
		return nil, err
	}
	return &resp.APIKey, nil
}

// RevokeAPIKey deletes the key with the given id. The backend also
// accepts the key value in a DELETE body, but that form is legacy and
// not used here.
func (c *Client) RevokeAPIKey(ctx context.Context, keyID string) error {
	return c.do(ctx, http.MethodDelete, "/users/me/api-keys/"+keyID, nil, nil, nil, true)
}
