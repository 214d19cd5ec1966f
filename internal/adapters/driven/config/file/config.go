// Package file loads service configuration from a TOML file, with
// environment variables taking precedence over file values.
package file

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/weave/internal/core/domain"
)

// Defaults applied before the file and environment are read.
const (
	DefaultListen  = ":8000"
	DefaultDataDir = "data"
)

// Provider OAuth endpoints. Overridable per deployment for sandboxes
// and tests.
const (
	airtableAuthURL  = "https://airtable.com/oauth2/v1/authorize"
	airtableTokenURL = "https://airtable.com/oauth2/v1/token"
	hubspotAuthURL   = "https://app.hubspot.com/oauth/authorize"
	hubspotTokenURL  = "https://api.hubapi.com/oauth/v1/token"
	notionAuthURL    = "https://api.notion.com/v1/oauth/authorize"
	notionTokenURL   = "https://api.notion.com/v1/oauth/token"
)

// Config is the full service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `toml:"listen" env:"WEAVE_LISTEN"`
	// DataDir roots all durable state: broker db, indexes, sessions.
	DataDir string `toml:"data_dir" env:"WEAVE_DATA_DIR"`
	// Verbose enables debug logging.
	Verbose bool `toml:"verbose" env:"WEAVE_VERBOSE"`
	// TokenBudget caps conversation memory; zero uses the built-in
	// default.
	TokenBudget int `toml:"token_budget" env:"WEAVE_TOKEN_BUDGET"`

	OpenAI     OpenAIConfig     `toml:"openai"`
	Connectors ConnectorsConfig `toml:"connectors"`
}

// OpenAIConfig configures the embedding and chat adapters.
type OpenAIConfig struct {
	APIKey         string `toml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL        string `toml:"base_url" env:"OPENAI_BASE_URL"`
	EmbeddingModel string `toml:"embedding_model" env:"WEAVE_EMBEDDING_MODEL"`
	ChatModel      string `toml:"chat_model" env:"WEAVE_CHAT_MODEL"`
}

// ConnectorsConfig holds one OAuth application per provider. A
// provider without client credentials is simply not registered.
type ConnectorsConfig struct {
	Airtable OAuthAppConfig `toml:"airtable" envPrefix:"WEAVE_AIRTABLE_"`
	Hubspot  OAuthAppConfig `toml:"hubspot" envPrefix:"WEAVE_HUBSPOT_"`
	Notion   OAuthAppConfig `toml:"notion" envPrefix:"WEAVE_NOTION_"`
}

// OAuthAppConfig is the per-provider OAuth application settings.
type OAuthAppConfig struct {
	ClientID     string `toml:"client_id" env:"CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"CLIENT_SECRET"`
	AuthURL      string `toml:"auth_url" env:"AUTH_URL"`
	TokenURL     string `toml:"token_url" env:"TOKEN_URL"`
	RedirectURI  string `toml:"redirect_uri" env:"REDIRECT_URI"`
	Scopes       string `toml:"scopes" env:"SCOPES"`
}

// Enabled reports whether the provider has credentials configured.
func (c OAuthAppConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Load builds the configuration: defaults, then the TOML file at path
// (a missing file is fine), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Listen:  DefaultListen,
		DataDir: DefaultDataDir,
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// OAuthApp materialises the domain OAuth application for a connector,
// filling provider defaults for anything the config leaves empty.
func (c *Config) OAuthApp(connector domain.ConnectorType) *domain.OAuthApp {
	var (
		appCfg            OAuthAppConfig
		authURL, tokenURL string
		usePKCE           bool
		extraParams       map[string]string
	)
	switch connector {
	case domain.ConnectorAirtable:
		appCfg, authURL, tokenURL, usePKCE = c.Connectors.Airtable, airtableAuthURL, airtableTokenURL, true
	case domain.ConnectorHubspot:
		appCfg, authURL, tokenURL = c.Connectors.Hubspot, hubspotAuthURL, hubspotTokenURL
	case domain.ConnectorNotion:
		appCfg, authURL, tokenURL = c.Connectors.Notion, notionAuthURL, notionTokenURL
		// Notion scopes the grant to the authorizing user's workspaces.
		extraParams = map[string]string{"owner": "user"}
	default:
		return nil
	}
	if !appCfg.Enabled() {
		return nil
	}

	app := &domain.OAuthApp{
		ClientID:        appCfg.ClientID,
		ClientSecret:    appCfg.ClientSecret,
		AuthURL:         appCfg.AuthURL,
		TokenURL:        appCfg.TokenURL,
		RedirectURI:     appCfg.RedirectURI,
		Scopes:          appCfg.Scopes,
		UsePKCE:         usePKCE,
		ExtraAuthParams: extraParams,
	}
	if app.AuthURL == "" {
		app.AuthURL = authURL
	}
	if app.TokenURL == "" {
		app.TokenURL = tokenURL
	}
	if app.RedirectURI == "" {
		app.RedirectURI = fmt.Sprintf("http://localhost%s/integrations/%s/oauth2callback", c.Listen, connector)
	}
	return app
}
