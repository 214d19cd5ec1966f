// Package notion implements the Notion connector.
//
// Notion departs from the standard form flow: the token exchange is a
// JSON body authenticated with a Basic header, and every API call must
// carry the Notion-Version header. Fetching is one search call over
// everything the integration can see.
package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/weave/internal/connectors"
	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
	normaliser "github.com/custodia-labs/weave/internal/normalisers/notion"
)

const (
	// APIBaseURL is the Notion REST API root.
	APIBaseURL = "https://api.notion.com/v1"

	// APIVersion pins the Notion API revision.
	APIVersion = "2022-06-28"

	// requestsPerSecond stays under Notion's 3 req/s average cap.
	requestsPerSecond = 3

	// normaliseConcurrency bounds the per-result normalisation fan-out.
	normaliseConcurrency = 8
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector is the Notion adapter.
type Connector struct {
	app     *domain.OAuthApp
	client  *connectors.Client
	baseURL string
}

// New creates the Notion connector for the given OAuth application.
func New(app *domain.OAuthApp) *Connector {
	return &Connector{
		app:     app,
		client:  connectors.NewClient(domain.ConnectorNotion.String(), requestsPerSecond),
		baseURL: APIBaseURL,
	}
}

// Type returns the connector type.
func (c *Connector) Type() domain.ConnectorType {
	return domain.ConnectorNotion
}

// OAuth returns the OAuth application configuration.
func (c *Connector) OAuth() *domain.OAuthApp {
	return c.app
}

// CredentialPolicy declares one-shot credential handoff.
func (c *Connector) CredentialPolicy() domain.CredentialPolicy {
	return domain.CredentialOneShot
}

// Exchange swaps the authorization code for tokens. Notion wants the
// grant as a JSON body with Basic client authentication.
func (c *Connector) Exchange(ctx context.Context, code, _ string) (*domain.CredentialRecord, error) {
	payload, err := json.Marshal(map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": c.app.RedirectURI,
	})
	if err != nil {
		return nil, fmt.Errorf("encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.app.TokenURL, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.app.BasicAuth())

	body, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return connectors.DecodeCredentials(domain.ConnectorNotion.String(), body)
}

// searchResponse is the search endpoint payload. Results stay raw:
// their shape varies by object type and property schema, and the
// normaliser does its own traversal.
type searchResponse struct {
	Results []json.RawMessage `json:"results"`
}

// FetchItems searches the workspace and normalises every result.
// Normalisation of independent results runs concurrently; a result
// that fails to decode aborts the batch.
func (c *Connector) FetchItems(ctx context.Context, creds *domain.CredentialRecord) ([]domain.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Notion-Version", APIVersion)

	var search searchResponse
	if err := c.client.DoJSON(ctx, req, &search); err != nil {
		return nil, err
	}

	items := make([]domain.Item, len(search.Results))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(normaliseConcurrency)
	for i, raw := range search.Results {
		g.Go(func() error {
			var record map[string]any
			if err := json.Unmarshal(raw, &record); err != nil {
				return fmt.Errorf("decode search result %d: %w", i, err)
			}
			items[i] = normaliser.Item(record)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
