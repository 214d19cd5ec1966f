package domain

import (
	"fmt"
	"strings"
)

// ConnectorType identifies a supported integration provider.
type ConnectorType string

const (
	// ConnectorAirtable is the Airtable integration.
	ConnectorAirtable ConnectorType = "airtable"
	// ConnectorHubspot is the HubSpot integration.
	ConnectorHubspot ConnectorType = "hubspot"
	// ConnectorNotion is the Notion integration.
	ConnectorNotion ConnectorType = "notion"
)

// AllConnectorTypes lists every supported connector.
var AllConnectorTypes = []ConnectorType{
	ConnectorAirtable,
	ConnectorHubspot,
	ConnectorNotion,
}

// ParseConnectorType converts a string to a ConnectorType.
// Returns ErrUnsupportedType for unknown values.
func ParseConnectorType(s string) (ConnectorType, error) {
	t := ConnectorType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllConnectorTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: connector %q", ErrUnsupportedType, s)
}

// String returns the connector identifier.
func (t ConnectorType) String() string {
	return string(t)
}

// StateKey returns the TTL-store key holding the pending AuthState
// for this connector and tenant.
func (t ConnectorType) StateKey(orgID, userID string) string {
	return fmt.Sprintf("%s_state:%s:%s", t, orgID, userID)
}

// CredentialsKey returns the TTL-store key holding the exchanged
// CredentialRecord for this connector and tenant.
func (t ConnectorType) CredentialsKey(orgID, userID string) string {
	return fmt.Sprintf("%s_credentials:%s:%s", t, orgID, userID)
}
