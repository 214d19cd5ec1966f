// Package airtable implements the Airtable connector.
//
// Airtable requires PKCE on top of the authorization-code flow and
// authenticates the token exchange with a Basic header. Fetching walks
// the metadata API: the base list is cursor-paginated through an
// "offset" token, and each base gets one tables sub-fetch.
package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/weave/internal/connectors"
	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
	normaliser "github.com/custodia-labs/weave/internal/normalisers/airtable"
)

const (
	// APIBaseURL is the Airtable REST API root.
	APIBaseURL = "https://api.airtable.com/v0"

	// requestsPerSecond stays under Airtable's 5 req/s cap.
	requestsPerSecond = 4
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector is the Airtable adapter.
type Connector struct {
	app     *domain.OAuthApp
	client  *connectors.Client
	baseURL string
}

// New creates the Airtable connector for the given OAuth application.
func New(app *domain.OAuthApp) *Connector {
	return &Connector{
		app:     app,
		client:  connectors.NewClient(domain.ConnectorAirtable.String(), requestsPerSecond),
		baseURL: APIBaseURL,
	}
}

// Type returns the connector type.
func (c *Connector) Type() domain.ConnectorType {
	return domain.ConnectorAirtable
}

// OAuth returns the OAuth application configuration.
func (c *Connector) OAuth() *domain.OAuthApp {
	return c.app
}

// CredentialPolicy declares one-shot credential handoff: the exchanged
// tokens are read once and deleted.
func (c *Connector) CredentialPolicy() domain.CredentialPolicy {
	return domain.CredentialOneShot
}

// Exchange swaps the authorization code for tokens. Airtable expects a
// form body carrying the PKCE verifier, authenticated with the Basic
// client credentials.
func (c *Connector) Exchange(ctx context.Context, code, codeVerifier string) (*domain.CredentialRecord, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.app.RedirectURI},
		"client_id":     {c.app.ClientID},
		"code_verifier": {codeVerifier},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.app.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+c.app.BasicAuth())

	body, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return connectors.DecodeCredentials(domain.ConnectorAirtable.String(), body)
}

// basesPage is one page of the base list.
type basesPage struct {
	Bases  []normaliser.Record `json:"bases"`
	Offset string              `json:"offset"`
}

// tablesResponse is the tables sub-fetch for one base.
type tablesResponse struct {
	Tables []normaliser.Record `json:"tables"`
}

// FetchItems lists every base and, under each, its tables. Bases
// paginate through an offset cursor; the loop stops when the provider
// stops returning one. Any failing request fails the whole fetch.
func (c *Connector) FetchItems(ctx context.Context, creds *domain.CredentialRecord) ([]domain.Item, error) {
	bases, err := c.listBases(ctx, creds.AccessToken)
	if err != nil {
		return nil, err
	}

	var items []domain.Item
	for _, base := range bases {
		items = append(items, normaliser.Base(base))

		var tables tablesResponse
		u := fmt.Sprintf("%s/meta/bases/%s/tables", c.baseURL, base.ID)
		if err := c.getJSON(ctx, u, creds.AccessToken, &tables); err != nil {
			return nil, err
		}
		for _, table := range tables.Tables {
			items = append(items, normaliser.Table(table, base))
		}
	}
	return items, nil
}

func (c *Connector) listBases(ctx context.Context, token string) ([]normaliser.Record, error) {
	var bases []normaliser.Record
	offset := ""
	for {
		u := c.baseURL + "/meta/bases"
		if offset != "" {
			u += "?offset=" + url.QueryEscape(offset)
		}
		var page basesPage
		if err := c.getJSON(ctx, u, token, &page); err != nil {
			return nil, err
		}
		bases = append(bases, page.Bases...)
		if page.Offset == "" {
			return bases, nil
		}
		offset = page.Offset
	}
}

func (c *Connector) getJSON(ctx context.Context, u, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.client.DoJSON(ctx, req, out)
}
