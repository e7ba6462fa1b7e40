package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeset/internal/oauth"
)

// fakeAuth is a scriptable Authenticator for client tests.
type fakeAuth struct {
	token        string
	refreshToken string
	refreshErr   error
	refreshCalls atomic.Int32
}

func (f *fakeAuth) AccessToken() string { return f.token }

func (f *fakeAuth) RefreshAccessToken(ctx context.Context) (*oauth.TokenRefresh, error) {
	f.refreshCalls.Add(1)
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	if f.refreshToken == "" {
		return nil, nil
	}
	f.token = f.refreshToken
	return &oauth.TokenRefresh{AccessToken: f.refreshToken, TokenType: "bearer"}, nil
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(ClientConfig{Auth: &fakeAuth{}})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestBalanceAttachesBearer(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"user_id":"u1","balance":1200,"total_deposited":2000,"total_spent":800,"last_updated":"2025-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: &fakeAuth{token: "tok-1"}})
	require.NoError(t, err)

	credits, err := client.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, int64(1200), credits.Balance)
}

func TestAuthRequiredWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a token")
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: &fakeAuth{}})
	require.NoError(t, err)

	_, err = client.Balance(context.Background())
	var noToken *NoTokenError
	assert.ErrorAs(t, err, &noToken)
}

func TestPricingDoesNotRequireToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"cost_per_minute_cents":5,"cost_per_minute_dollars":0.05}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: &fakeAuth{}})
	require.NoError(t, err)

	pricing, err := client.Pricing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), pricing.CostPerMinuteCents)
}

func TestRefreshesOnceOn401ThenRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer tok-new", r.Header.Get("Authorization"))
		w.Write([]byte(`{"user_id":"u1","balance":500,"total_deposited":500,"total_spent":0,"last_updated":"2025-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	auth := &fakeAuth{token: "tok-stale", refreshToken: "tok-new"}
	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: auth})
	require.NoError(t, err)

	credits, err := client.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), credits.Balance)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), auth.refreshCalls.Load())
}

func TestSecond401IsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	auth := &fakeAuth{token: "tok-stale", refreshToken: "tok-new"}
	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: auth})
	require.NoError(t, err)

	_, err = client.Balance(context.Background())
	var authErr *AuthenticationError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, int32(1), auth.refreshCalls.Load(), "refresh must not be retried")
}

func TestFailedRefreshIsTerminal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	auth := &fakeAuth{token: "tok-stale"} // refresh yields (nil, nil)
	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: auth})
	require.NoError(t, err)

	_, err = client.Balance(context.Background())
	var authErr *AuthenticationError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, int32(1), calls.Load(), "no retry after a failed refresh")
}

func TestBackendErrorMessageParsing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"detail":{"message":"insufficient balance"}}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: &fakeAuth{token: "tok"}})
	require.NoError(t, err)

	_, err = client.CreateDeposit(context.Background(), 1000)
	var backendErr *BackendRequestError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusPaymentRequired, backendErr.StatusCode)
	assert.Equal(t, "insufficient balance", backendErr.Message)
}

func TestCreateAPIKeyUnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/me/api-keys", r.URL.Path)
		w.Write([]byte(`{"api_key":{"key_id":"key-1","name":"ci","key":"cs_live_abcdef1234567890","created_at":"2025-01-01T00:00:00Z","is_active":true}}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: &fakeAuth{token: "tok"}})
	require.NoError(t, err)

	key, err := client.CreateAPIKey(context.Background(), "ci")
	require.NoError(t, err)
	assert.Equal(t, "key-1", key.KeyID)
	assert.Equal(t, "cs_live_abcdef1234567890", key.Key)
}

func TestRevokeAPIKeyUsesPath(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: &fakeAuth{token: "tok"}})
	require.NoError(t, err)

	require.NoError(t, client.RevokeAPIKey(context.Background(), "key-1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/users/me/api-keys/key-1", gotPath)
}

func TestSamplesQueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "swe-bench", q.Get("dataset"))
		assert.Equal(t, "django", q.Get("search"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "10", q.Get("page_size"))
		w.Write([]byte(`{"samples":[{"sample_id":"s-11","dataset":"swe-bench","language":"python"}],"total_count":23,"page":2,"page_size":10,"has_more":true}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: &fakeAuth{token: "tok"}})
	require.NoError(t, err)

	page, err := client.Samples(context.Background(), "swe-bench", "django", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 23, page.TotalCount)
	assert.True(t, page.HasMore)
	require.Len(t, page.Samples, 1)
	assert.Equal(t, "s-11", page.Samples[0].SampleID)
}

func TestUsageHistoryQueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "3", q.Get("page"))
		assert.Equal(t, "25", q.Get("limit"))
		w.Write([]byte(`{"current_balance_cents":100,"total_deposits_cents":500,"total_usage_cents":400,"transactions":[],"summary":{"total_sessions":4,"average_session_cost_cents":100,"total_session_duration_minutes":20,"average_session_duration_minutes":5}}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: &fakeAuth{token: "tok"}})
	require.NoError(t, err)

	history, err := client.UsageHistory(context.Background(), 3, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(100), history.CurrentBalanceCents)
	assert.Equal(t, 4, history.Summary.TotalSessions)
}

func TestDatasetsDecodesBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets", r.URL.Path)
		w.Write([]byte(`[{"name":"swe-bench","sample_count":23},{"name":"swe-gym","sample_count":5}]`))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Auth: &fakeAuth{token: "tok"}})
	require.NoError(t, err)

	datasets, err := client.Datasets(context.Background())
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "swe-bench", datasets[0].Name)
	assert.Equal(t, 23, datasets[0].SampleCount)
}
