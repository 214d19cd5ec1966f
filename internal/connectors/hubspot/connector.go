// Package hubspot implements the Hubspot connector.
//
// Hubspot runs a plain authorization-code flow with client credentials
// in the form body, so the exchange goes through golang.org/x/oauth2.
// Fetching pages through CRM companies with their contact associations
// and pulls each associated contact with bounded concurrency.
package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/weave/internal/connectors"
	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
	normaliser "github.com/custodia-labs/weave/internal/normalisers/hubspot"
)

const (
	// APIBaseURL is the Hubspot REST API root.
	APIBaseURL = "https://api.hubapi.com"

	// requestsPerSecond stays inside Hubspot's burst limits.
	requestsPerSecond = 8

	// pageLimit is the CRM list page size.
	pageLimit = 100

	// contactConcurrency bounds the per-contact detail fan-out.
	contactConcurrency = 8

	// contactAssociation is the association type linking a company to
	// its contacts; other association types on the same edge are
	// ignored.
	contactAssociation = "company_to_contact"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector is the Hubspot adapter.
type Connector struct {
	app     *domain.OAuthApp
	client  *connectors.Client
	baseURL string
}

// New creates the Hubspot connector for the given OAuth application.
func New(app *domain.OAuthApp) *Connector {
	return &Connector{
		app:     app,
		client:  connectors.NewClient(domain.ConnectorHubspot.String(), requestsPerSecond),
		baseURL: APIBaseURL,
	}
}

// Type returns the connector type.
func (c *Connector) Type() domain.ConnectorType {
	return domain.ConnectorHubspot
}

// OAuth returns the OAuth application configuration.
func (c *Connector) OAuth() *domain.OAuthApp {
	return c.app
}

// CredentialPolicy declares one-shot credential handoff.
func (c *Connector) CredentialPolicy() domain.CredentialPolicy {
	return domain.CredentialOneShot
}

// Exchange swaps the authorization code for tokens through the
// standard form flow.
func (c *Connector) Exchange(ctx context.Context, code, _ string) (*domain.CredentialRecord, error) {
	cfg := &oauth2.Config{
		ClientID:     c.app.ClientID,
		ClientSecret: c.app.ClientSecret,
		RedirectURL:  c.app.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.app.AuthURL,
			TokenURL:  c.app.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client.HTTP())
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return nil, domain.NewProviderError(
				domain.ConnectorHubspot.String(),
				retrieveErr.Response.StatusCode,
				string(retrieveErr.Body),
			)
		}
		return nil, fmt.Errorf("hubspot token exchange: %w", err)
	}

	raw, err := json.Marshal(tok)
	if err != nil {
		return nil, fmt.Errorf("serialise token: %w", err)
	}
	return &domain.CredentialRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    int(tok.ExpiresIn),
		Raw:          raw,
	}, nil
}

// companiesPage is one page of the CRM company list.
type companiesPage struct {
	Results []company `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

type company struct {
	ID           string                     `json:"id"`
	Properties   map[string]string          `json:"properties"`
	Associations map[string]associationList `json:"associations"`
}

type associationList struct {
	Results []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"results"`
}

type contact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  *time.Time        `json:"createdAt"`
	UpdatedAt  *time.Time        `json:"updatedAt"`
	Archived   bool              `json:"archived"`
}

// contactJob pairs one associated contact id with its company and the
// output slot its item lands in, keeping result order deterministic
// under concurrent fetches.
type contactJob struct {
	index     int
	contactID string
	company   normaliser.Company
}

// FetchItems lists every company with its contact associations, then
// fetches each associated contact and emits one item per (contact,
// company) pair. Contact fetches run concurrently with a fixed bound;
// the first failure aborts the whole batch.
func (c *Connector) FetchItems(ctx context.Context, creds *domain.CredentialRecord) ([]domain.Item, error) {
	companies, err := c.listCompanies(ctx, creds.AccessToken)
	if err != nil {
		return nil, err
	}

	var jobs []contactJob
	for _, comp := range companies {
		parent := normaliser.Company{ID: comp.ID, Name: comp.Properties["name"]}
		for _, assoc := range comp.Associations["contacts"].Results {
			if assoc.Type != contactAssociation {
				continue
			}
			jobs = append(jobs, contactJob{index: len(jobs), contactID: assoc.ID, company: parent})
		}
	}

	items := make([]domain.Item, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(contactConcurrency)
	for _, job := range jobs {
		g.Go(func() error {
			fetched, err := c.getContact(gctx, creds.AccessToken, job.contactID)
			if err != nil {
				return err
			}
			items[job.index] = normaliser.Item(normaliser.Contact{
				ID:        fetched.ID,
				FirstName: fetched.Properties["firstname"],
				LastName:  fetched.Properties["lastname"],
				CreatedAt: fetched.CreatedAt,
				UpdatedAt: fetched.UpdatedAt,
				Archived:  fetched.Archived,
			}, job.company)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Connector) listCompanies(ctx context.Context, token string) ([]company, error) {
	var companies []company
	after := ""
	for {
		q := url.Values{
			"limit":        {fmt.Sprint(pageLimit)},
			"associations": {"contacts"},
		}
		if after != "" {
			q.Set("after", after)
		}
		u := c.baseURL + "/crm/v3/objects/companies?" + q.Encode()

		var page companiesPage
		if err := c.getJSON(ctx, u, token, &page); err != nil {
			return nil, err
		}
		companies = append(companies, page.Results...)

		if page.Paging == nil || page.Paging.Next == nil || page.Paging.Next.After == "" {
			return companies, nil
		}
		after = page.Paging.Next.After
	}
}

func (c *Connector) getContact(ctx context.Context, token, id string) (*contact, error) {
	var out contact
	u := c.baseURL + "/crm/v3/objects/contacts/" + url.PathEscape(id)
	if err := c.getJSON(ctx, u, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Connector) getJSON(ctx context.Context, u, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.client.DoJSON(ctx, req, out)
}
