package airtable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weave/internal/core/domain"
)

func testApp(tokenURL string) *domain.OAuthApp {
	return &domain.OAuthApp{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      "https://airtable.com/oauth2/v1/authorize",
		TokenURL:     tokenURL,
		RedirectURI:  "http://localhost:8000/integrations/airtable/oauth2callback",
		Scopes:       "data.records:read schema.bases:read",
		UsePKCE:      true,
	}
}

func TestExchange(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the form body, verifier and basic auth", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			assert.Equal(t, "the-code", r.PostForm.Get("code"))
			assert.Equal(t, "the-verifier", r.PostForm.Get("code_verifier"))
			assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
			assert.NotEmpty(t, r.PostForm.Get("redirect_uri"))

			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)

			w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600}`))
		}))
		defer srv.Close()

		conn := New(testApp(srv.URL))
		record, err := conn.Exchange(ctx, "the-code", "the-verifier")
		require.NoError(t, err)
		assert.Equal(t, "at", record.AccessToken)
		assert.Equal(t, "rt", record.RefreshToken)
	})

	t.Run("non-2xx exchange is a provider error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}))
		defer srv.Close()

		conn := New(testApp(srv.URL))
		_, err := conn.Exchange(ctx, "bad", "v")
		require.Error(t, err)
		pe, ok := domain.IsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "airtable", pe.Provider)
		assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	})
}

func TestFetchItems(t *testing.T) {
	ctx := context.Background()
	creds := &domain.CredentialRecord{AccessToken: "at"}

	t.Run("walks paginated bases and their tables", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/meta/bases", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			if r.URL.Query().Get("offset") == "" {
				w.Write([]byte(`{"bases":[{"id":"app1","name":"Sales"}],"offset":"page2"}`))
				return
			}
			assert.Equal(t, "page2", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"bases":[{"id":"app2","name":"Ops"}]}`))
		})
		mux.HandleFunc("/meta/bases/app1/tables", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"tables":[{"id":"tbl1","name":"Leads"},{"id":"tbl2","name":"Deals"}]}`))
		})
		mux.HandleFunc("/meta/bases/app2/tables", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"tables":[]}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		conn := New(testApp("unused"))
		conn.baseURL = srv.URL

		items, err := conn.FetchItems(ctx, creds)
		require.NoError(t, err)
		require.Len(t, items, 4)

		assert.Equal(t, "app1_Base", items[0].ID)
		assert.Equal(t, "tbl1_Table", items[1].ID)
		require.NotNil(t, items[1].ParentID)
		assert.Equal(t, "app1_Base", *items[1].ParentID)
		assert.Equal(t, "tbl2_Table", items[2].ID)
		assert.Equal(t, "app2_Base", items[3].ID)
	})

	t.Run("a failing tables sub-fetch fails the whole batch", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/meta/bases", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"bases":[{"id":"app1","name":"Sales"}]}`))
		})
		mux.HandleFunc("/meta/bases/app1/tables", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		conn := New(testApp("unused"))
		conn.baseURL = srv.URL

		items, err := conn.FetchItems(ctx, creds)
		require.Error(t, err)
		assert.Nil(t, items)
		pe, ok := domain.IsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, pe.StatusCode)
	})
}
