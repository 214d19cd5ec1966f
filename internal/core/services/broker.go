package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
	"github.com/custodia-labs/weave/internal/logger"
)

// Broker owns the OAuth2 state machine per (connector, org, user):
//
//	NONE -> PENDING (BeginAuthorization)
//	     -> EXCHANGED (HandleCallback) | NONE (mismatch, no state change)
//	     -> CONSUMED | EXPIRED
//
// PENDING and EXCHANGED auto-expire after domain.StateTTL.
//
// Two concurrent BeginAuthorization calls for the same triple are not
// deduplicated: the later call's state silently overwrites the earlier
// one (last-write-wins), and an in-flight callback racing against the
// overwrite can spuriously fail with ErrStateMismatch. This is accepted
// given the short TTL window and must not be "fixed" by adding locking.
type Broker struct {
	kv       driven.KVStore
	registry *Registry
}

// NewBroker creates a credential broker over the given TTL store.
func NewBroker(kv driven.KVStore, registry *Registry) *Broker {
	return &Broker{kv: kv, registry: registry}
}

// BeginAuthorization starts the OAuth flow for a tenant. It generates a
// random nonce (and, for PKCE connectors, a verifier/challenge pair),
// persists the pending AuthState under a 600s TTL, and returns the
// provider authorization URL. No network call is made.
func (b *Broker) BeginAuthorization(ctx context.Context, connector domain.ConnectorType, tenant domain.Tenant) (string, error) {
	if !tenant.IsValid() {
		return "", fmt.Errorf("%w: org_id and user_id are required", domain.ErrInvalidInput)
	}
	conn, err := b.registry.Get(connector)
	if err != nil {
		return "", err
	}

	nonce, err := generateNonce()
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	state := domain.AuthState{
		Nonce:     nonce,
		OrgID:     tenant.OrgID,
		UserID:    tenant.UserID,
		Connector: connector,
		CreatedAt: time.Now().UTC(),
	}

	app := conn.OAuth()
	challenge := ""
	if app.UsePKCE {
		verifier, err := generateCodeVerifier()
		if err != nil {
			return "", fmt.Errorf("generate code verifier: %w", err)
		}
		state.CodeVerifier = verifier
		challenge = generateCodeChallenge(verifier)
	}

	encoded, err := encodeStatePayload(domain.StatePayload{
		Nonce:  nonce,
		OrgID:  tenant.OrgID,
		UserID: tenant.UserID,
	})
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshal auth state: %w", err)
	}
	// Last-write-wins: any prior pending state for this triple is overwritten.
	key := connector.StateKey(tenant.OrgID, tenant.UserID)
	if err := b.kv.Set(ctx, key, raw, domain.StateTTL); err != nil {
		return "", fmt.Errorf("persist auth state: %w", err)
	}

	logger.Debug("authorization started: connector=%s org=%s user=%s pkce=%v",
		connector, tenant.OrgID, tenant.UserID, app.UsePKCE)

	return app.AuthorizeURL(encoded, challenge), nil
}

// HandleCallback completes the OAuth flow from the provider redirect.
//
// The stored AuthState is deleted exactly once, concurrently with the
// token exchange (independent resources, no ordering between them); both
// complete before this function returns. On nonce mismatch nothing is
// deleted and no exchange is issued.
func (b *Broker) HandleCallback(ctx context.Context, connector domain.ConnectorType, query url.Values) error {
	conn, err := b.registry.Get(connector)
	if err != nil {
		return err
	}

	if errParam := query.Get("error"); errParam != "" {
		msg := query.Get("error_description")
		if msg == "" {
			msg = errParam
		}
		return domain.NewProviderError(connector.String(), 0, msg)
	}

	payload, err := decodeStatePayload(query.Get("state"))
	if err != nil {
		return err
	}

	key := connector.StateKey(payload.OrgID, payload.UserID)
	raw, err := b.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: no pending authorization", domain.ErrStateMismatch)
		}
		return fmt.Errorf("load auth state: %w", err)
	}

	var saved domain.AuthState
	if err := json.Unmarshal(raw, &saved); err != nil {
		return fmt.Errorf("parse auth state: %w", err)
	}
	if saved.Nonce != payload.Nonce {
		return fmt.Errorf("%w: nonce differs from stored authorization", domain.ErrStateMismatch)
	}

	code := query.Get("code")
	var record *domain.CredentialRecord
	g, gctx := errgroup.WithContext(ctx)
	// The deletion must happen exactly once even when the exchange fails,
	// so it runs outside the group's cancellation.
	deleteCtx := context.WithoutCancel(ctx)
	g.Go(func() error {
		// Single-use: once validated, the state must never serve a second
		// callback. Runs alongside the exchange to avoid adding latency.
		if err := b.kv.Delete(deleteCtx, key); err != nil {
			return fmt.Errorf("delete auth state: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rec, err := conn.Exchange(gctx, code, saved.CodeVerifier)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrTokenExchange, err)
		}
		record = rec
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	rawRecord, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	credKey := connector.CredentialsKey(payload.OrgID, payload.UserID)
	if err := b.kv.Set(ctx, credKey, rawRecord, domain.StateTTL); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}

	logger.Debug("authorization exchanged: connector=%s org=%s user=%s",
		connector, payload.OrgID, payload.UserID)

	return nil
}

// GetCredentials hands stored credentials to the caller. The connector's
// declared policy decides whether the record survives the read: one-shot
// connectors consume it, reusable connectors leave it until TTL expiry.
func (b *Broker) GetCredentials(ctx context.Context, connector domain.ConnectorType, tenant domain.Tenant) (*domain.CredentialRecord, error) {
	conn, err := b.registry.Get(connector)
	if err != nil {
		return nil, err
	}
	if !tenant.IsValid() {
		return nil, fmt.Errorf("%w: org_id and user_id are required", domain.ErrInvalidInput)
	}

	key := connector.CredentialsKey(tenant.OrgID, tenant.UserID)
	raw, err := b.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	var record domain.CredentialRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	if conn.CredentialPolicy() == domain.CredentialOneShot {
		if err := b.kv.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("consume credentials: %w", err)
		}
	}

	return &record, nil
}
