package domain

import (
	"encoding/json"
	"time"
)

// StateTTL bounds the lifetime of a pending authorization and of
// exchanged credentials awaiting handoff.
const StateTTL = 600 * time.Second

// AuthState is a pending OAuth authorization for one (connector, org, user).
// Created by BeginAuthorization, consumed exactly once by HandleCallback.
//
// The PKCE code verifier is folded into this record so that state and
// verifier are written and deleted as a single unit; there is no window
// in which one exists without the other.
type AuthState struct {
	// Nonce is the cryptographically random CSRF token echoed back by the
	// provider inside the state parameter.
	Nonce string `json:"state"`
	// OrgID and UserID scope the authorization to a tenant.
	OrgID  string `json:"org_id"`
	UserID string `json:"user_id"`
	// Connector is the provider this authorization targets.
	Connector ConnectorType `json:"connector"`
	// CodeVerifier is the PKCE verifier, empty for connectors without PKCE.
	CodeVerifier string `json:"code_verifier,omitempty"`
	// CreatedAt is when the authorization began.
	CreatedAt time.Time `json:"created_at"`
}

// StatePayload is the blob carried through the provider as the OAuth
// state parameter: base64url-encoded JSON of {state, org_id, user_id}.
// Field names match what providers echo back unchanged.
type StatePayload struct {
	Nonce  string `json:"state"`
	OrgID  string `json:"org_id"`
	UserID string `json:"user_id"`
}

// CredentialRecord holds exchanged OAuth tokens awaiting a one-shot handoff.
type CredentialRecord struct {
	// AccessToken is the bearer token for provider API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is present only when the provider issues one.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "bearer".
	TokenType string `json:"token_type,omitempty"`
	// ExpiresIn is the provider-reported token lifetime in seconds.
	ExpiresIn int `json:"expires_in,omitempty"`
	// Raw preserves the complete provider token payload, because providers
	// attach extra fields (workspace ids, bot ids) that callers may need.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// CredentialPolicy controls what GetCredentials does with a stored record.
type CredentialPolicy int

const (
	// CredentialOneShot deletes the record on retrieval. The credentials
	// can be read exactly once; a second read fails.
	CredentialOneShot CredentialPolicy = iota
	// CredentialReusable leaves the record in place until its TTL expires.
	CredentialReusable
)
