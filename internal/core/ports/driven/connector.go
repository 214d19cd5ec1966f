package driven

import (
	"context"

	"github.com/custodia-labs/weave/internal/core/domain"
)

// Connector adapts one integration provider. Each connector supplies its
// OAuth endpoints and quirks, its credential handoff policy, and a fetch
// that returns normalised items.
//
// Fetching is all-or-nothing: any upstream non-2xx aborts the whole call
// with a *domain.ProviderError and partial results are discarded.
type Connector interface {
	// Type returns the connector type identifier.
	Type() domain.ConnectorType

	// OAuth returns the provider's OAuth application configuration.
	OAuth() *domain.OAuthApp

	// CredentialPolicy declares what GetCredentials does with a stored
	// record: one-shot (delete-on-read) or reusable until TTL expiry.
	CredentialPolicy() domain.CredentialPolicy

	// Exchange trades an authorization code for tokens at the provider's
	// token endpoint. codeVerifier is empty for connectors without PKCE.
	// Encoding is provider-specific (form vs JSON, Basic auth vs body
	// credentials); each connector owns its own quirks.
	Exchange(ctx context.Context, code, codeVerifier string) (*domain.CredentialRecord, error)

	// FetchItems retrieves all provider records reachable with the given
	// credentials and maps them to canonical items.
	FetchItems(ctx context.Context, creds *domain.CredentialRecord) ([]domain.Item, error)
}
