package domain

import (
	"encoding/base64"
	"fmt"
	"net/url"
)

// OAuthApp stores one provider's OAuth application configuration:
// the client credentials from the provider's developer console plus
// the endpoints and scopes the broker needs to drive the flow.
type OAuthApp struct {
	// ClientID is the OAuth client ID.
	ClientID string `json:"client_id"`
	// ClientSecret is the OAuth client secret.
	ClientSecret string `json:"client_secret"`
	// AuthURL is the authorization endpoint.
	AuthURL string `json:"auth_url"`
	// TokenURL is the token exchange endpoint.
	TokenURL string `json:"token_url"`
	// RedirectURI is the callback URI registered with the provider.
	RedirectURI string `json:"redirect_uri"`
	// Scopes is the space-separated scope string, empty when the
	// provider does not use scopes (Notion).
	Scopes string `json:"scopes,omitempty"`
	// UsePKCE indicates the provider requires a PKCE verifier/challenge pair.
	UsePKCE bool `json:"use_pkce"`
	// ExtraAuthParams are provider-specific query parameters added to
	// the authorization URL, like Notion's owner=user.
	ExtraAuthParams map[string]string `json:"extra_auth_params,omitempty"`
}

// AuthorizeURL builds the provider authorization URL with the encoded
// state and, when PKCE is in use, the S256 code challenge.
func (a *OAuthApp) AuthorizeURL(state, codeChallenge string) string {
	q := url.Values{}
	q.Set("client_id", a.ClientID)
	q.Set("redirect_uri", a.RedirectURI)
	q.Set("response_type", "code")
	for k, v := range a.ExtraAuthParams {
		q.Set(k, v)
	}
	if a.Scopes != "" {
		q.Set("scope", a.Scopes)
	}
	q.Set("state", state)
	if a.UsePKCE && codeChallenge != "" {
		q.Set("code_challenge", codeChallenge)
		q.Set("code_challenge_method", "S256")
	}
	return a.AuthURL + "?" + q.Encode()
}

// BasicAuth returns the base64-encoded "client_id:client_secret" pair
// used by providers that authenticate the token exchange with a Basic
// authorization header (Airtable, Notion).
func (a *OAuthApp) BasicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", a.ClientID, a.ClientSecret)))
}
