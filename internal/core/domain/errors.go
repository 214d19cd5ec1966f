package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown connector type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Authorization Errors.

	// ErrInvalidState indicates the OAuth state parameter could not be decoded.
	ErrInvalidState = errors.New("invalid state")

	// ErrStateMismatch indicates the callback state does not match the stored
	// authorization, or no authorization is pending for the tenant.
	ErrStateMismatch = errors.New("state does not match")

	// ErrCredentialsNotFound indicates no credentials are stored for the tenant:
	// never exchanged, expired, or already consumed. The client must re-authorize.
	ErrCredentialsNotFound = errors.New("no credentials found")

	// ErrTokenExchange indicates the provider rejected the authorization code.
	// The authorization attempt is dead; the client must start over.
	ErrTokenExchange = errors.New("token exchange failed")

	// Service Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ProviderError represents an upstream provider failure.
// It is non-retriable at this layer; callers retry at their discretion.
type ProviderError struct {
	// Provider is the connector type that produced the error.
	Provider string
	// StatusCode is the upstream HTTP status, or 0 when the provider
	// reported the failure through a redirect error parameter.
	StatusCode int
	// Message is the upstream error description, if any.
	Message string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: provider returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: provider error: %s", e.Provider, e.Message)
}

// NewProviderError creates a ProviderError for the given connector.
func NewProviderError(provider string, statusCode int, message string) *ProviderError {
	return &ProviderError{Provider: provider, StatusCode: statusCode, Message: message}
}

// IsProviderError checks whether err is a ProviderError.
// Returns the ProviderError and true if it is, nil and false otherwise.
func IsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
