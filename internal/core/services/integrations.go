package services

import (
	"context"

	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driving"
)

// Ensure Integrations implements the interface.
var _ driving.IntegrationService = (*Integrations)(nil)

// Integrations composes the credential broker with the fetch/ingest path
// to expose the full integration surface.
type Integrations struct {
	*Broker
	registry *Registry
	ingestor *Ingestor
}

// NewIntegrations creates the integration service.
func NewIntegrations(broker *Broker, registry *Registry, ingestor *Ingestor) *Integrations {
	return &Integrations{Broker: broker, registry: registry, ingestor: ingestor}
}

// FetchItems pulls and normalises provider records with the given
// credentials. The fetch is all-or-nothing; on success the items are
// handed to the ingestor, which feeds the tenant's knowledge index in
// the background.
func (s *Integrations) FetchItems(ctx context.Context, connector domain.ConnectorType, tenant domain.Tenant, creds *domain.CredentialRecord) ([]domain.Item, error) {
	conn, err := s.registry.Get(connector)
	if err != nil {
		return nil, err
	}
	items, err := conn.FetchItems(ctx, creds)
	if err != nil {
		return nil, err
	}
	if s.ingestor != nil {
		s.ingestor.IngestItems(tenant, connector, items)
	}
	return items, nil
}
