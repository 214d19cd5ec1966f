package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weave/internal/core/domain"
)

func TestClientDoJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a successful response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"value":"ok"}`))
		}))
		defer srv.Close()

		client := NewClient("testprov", 100)
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)

		var out struct {
			Value string `json:"value"`
		}
		require.NoError(t, client.DoJSON(ctx, req, &out))
		assert.Equal(t, "ok", out.Value)
	})

	t.Run("non-2xx becomes a provider error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewClient("testprov", 100)
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)

		err = client.DoJSON(ctx, req, nil)
		require.Error(t, err)
		pe, ok := domain.IsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "testprov", pe.Provider)
		assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
		assert.Contains(t, pe.Message, "quota exceeded")
	})

	t.Run("cancelled context aborts before the request", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		client := NewClient("testprov", 100)
		req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:0", nil)
		require.NoError(t, err)

		assert.Error(t, client.DoJSON(cancelled, req, nil))
	})
}

func TestDecodeCredentials(t *testing.T) {
	t.Run("keeps the raw payload", func(t *testing.T) {
		body := []byte(`{"access_token":"tok","refresh_token":"ref","token_type":"bearer","expires_in":3600,"workspace_id":"w1"}`)

		record, err := DecodeCredentials("notion", body)
		require.NoError(t, err)
		assert.Equal(t, "tok", record.AccessToken)
		assert.Equal(t, "ref", record.RefreshToken)
		assert.Equal(t, "bearer", record.TokenType)
		assert.Equal(t, 3600, record.ExpiresIn)
		assert.JSONEq(t, string(body), string(record.Raw))
	})

	t.Run("missing access token is a provider failure", func(t *testing.T) {
		_, err := DecodeCredentials("notion", []byte(`{"error":"invalid_grant"}`))
		require.Error(t, err)
		pe, ok := domain.IsProviderError(err)
		require.True(t, ok)
		assert.Contains(t, pe.Message, "invalid_grant")
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		_, err := DecodeCredentials("notion", []byte("not json"))
		assert.Error(t, err)
	})
}
