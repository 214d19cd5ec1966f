package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weave/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultListen, cfg.Listen)
		assert.Equal(t, DefaultDataDir, cfg.DataDir)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
listen = ":9000"
data_dir = "/var/lib/weave"
token_budget = 8000

[openai]
api_key = "sk-test"
chat_model = "gpt-4o"

[connectors.airtable]
client_id = "air-id"
client_secret = "air-secret"
scopes = "data.records:read"
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.Listen)
		assert.Equal(t, "/var/lib/weave", cfg.DataDir)
		assert.Equal(t, 8000, cfg.TokenBudget)
		assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
		assert.True(t, cfg.Connectors.Airtable.Enabled())
		assert.False(t, cfg.Connectors.Notion.Enabled())
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, `listen = ":9000"`)
		t.Setenv("WEAVE_LISTEN", ":7000")
		t.Setenv("WEAVE_NOTION_CLIENT_ID", "env-id")
		t.Setenv("WEAVE_NOTION_CLIENT_SECRET", "env-secret")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":7000", cfg.Listen)
		assert.True(t, cfg.Connectors.Notion.Enabled())
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := writeConfig(t, `listen = [broken`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestOAuthApp(t *testing.T) {
	cfg := &Config{Listen: ":8000"}
	cfg.Connectors.Airtable = OAuthAppConfig{ClientID: "id", ClientSecret: "secret"}
	cfg.Connectors.Notion = OAuthAppConfig{
		ClientID:     "nid",
		ClientSecret: "nsecret",
		TokenURL:     "https://sandbox.example/token",
	}

	t.Run("fills provider defaults", func(t *testing.T) {
		app := cfg.OAuthApp(domain.ConnectorAirtable)
		require.NotNil(t, app)
		assert.Equal(t, airtableAuthURL, app.AuthURL)
		assert.Equal(t, airtableTokenURL, app.TokenURL)
		assert.True(t, app.UsePKCE)
		assert.Equal(t, "http://localhost:8000/integrations/airtable/oauth2callback", app.RedirectURI)
	})

	t.Run("configured endpoints win over defaults", func(t *testing.T) {
		app := cfg.OAuthApp(domain.ConnectorNotion)
		require.NotNil(t, app)
		assert.Equal(t, "https://sandbox.example/token", app.TokenURL)
		assert.Equal(t, notionAuthURL, app.AuthURL)
		assert.False(t, app.UsePKCE)
	})

	t.Run("unconfigured provider yields nil", func(t *testing.T) {
		assert.Nil(t, cfg.OAuthApp(domain.ConnectorHubspot))
	})

	t.Run("owner=user is a Notion-only parameter", func(t *testing.T) {
		notion := cfg.OAuthApp(domain.ConnectorNotion)
		require.NotNil(t, notion)
		assert.Equal(t, map[string]string{"owner": "user"}, notion.ExtraAuthParams)

		airtable := cfg.OAuthApp(domain.ConnectorAirtable)
		require.NotNil(t, airtable)
		assert.Empty(t, airtable.ExtraAuthParams)
	})
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, `listen = ":8000"`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reloaded := make(chan *Config, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		Watch(ctx, path, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before rewriting.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`listen = ":9999"`), 0600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, ":9999", cfg.Listen)
	case <-ctx.Done():
		t.Fatal("config change was not observed")
	}

	cancel()
	<-done
}
