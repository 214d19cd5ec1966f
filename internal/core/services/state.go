package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/weave/internal/core/domain"
)

// PKCE code verifier length in bytes (RFC 7636 recommends 43-128 characters
// after encoding).
const codeVerifierLength = 32

// nonceLength is the size of the CSRF nonce carried in the state blob.
const nonceLength = 32

// generateNonce creates a random state nonce for CSRF protection.
func generateNonce() (string, error) {
	bytes := make([]byte, nonceLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// generateCodeVerifier creates a cryptographically random code verifier for PKCE.
func generateCodeVerifier() (string, error) {
	bytes := make([]byte, codeVerifierLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Base64url encoding without padding
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// generateCodeChallenge creates a S256 code challenge from the verifier.
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// encodeStatePayload serialises the state blob carried through the provider:
// base64url-encoded JSON of {state, org_id, user_id}.
func encodeStatePayload(p domain.StatePayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// decodeStatePayload parses a state parameter echoed back by a provider.
// Any decoding failure maps to domain.ErrInvalidState: the value is
// attacker-influenced and nothing in it can be trusted until it matches
// a stored AuthState.
func decodeStatePayload(encoded string) (*domain.StatePayload, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		// Some providers strip padding in transit.
		raw, err = base64.RawURLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: decode state: %v", domain.ErrInvalidState, err)
		}
	}
	var p domain.StatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: parse state: %v", domain.ErrInvalidState, err)
	}
	if p.Nonce == "" || p.OrgID == "" || p.UserID == "" {
		return nil, fmt.Errorf("%w: incomplete state payload", domain.ErrInvalidState)
	}
	return &p, nil
}
