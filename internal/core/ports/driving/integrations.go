package driving

import (
	"context"
	"net/url"

	"github.com/custodia-labs/weave/internal/core/domain"
)

// IntegrationService exposes the OAuth credential broker and the item
// fetch path for every configured connector.
type IntegrationService interface {
	// BeginAuthorization starts the OAuth flow for a tenant and returns
	// the provider redirect URL. It never blocks on a network call.
	BeginAuthorization(ctx context.Context, connector domain.ConnectorType, tenant domain.Tenant) (string, error)

	// HandleCallback completes the flow from the provider redirect's
	// query parameters and stores the exchanged credentials.
	HandleCallback(ctx context.Context, connector domain.ConnectorType, query url.Values) error

	// GetCredentials hands stored credentials to the caller. Whether the
	// record survives the read is the connector's declared policy.
	GetCredentials(ctx context.Context, connector domain.ConnectorType, tenant domain.Tenant) (*domain.CredentialRecord, error)

	// FetchItems pulls and normalises provider records using previously
	// retrieved credentials, and feeds them to the tenant's knowledge
	// index in the background.
	FetchItems(ctx context.Context, connector domain.ConnectorType, tenant domain.Tenant, creds *domain.CredentialRecord) ([]domain.Item, error)
}
