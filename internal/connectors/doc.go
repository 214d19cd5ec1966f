// Package connectors contains the provider adapters.
//
// Each subpackage implements ports/driven.Connector for one provider:
// it declares the provider's OAuth application shape, performs the
// provider-specific token exchange, and fetches the provider's records
// as canonical items. Fetching is all-or-nothing: any failing request
// fails the whole batch, so a partial item list never reaches the
// caller.
//
// The shared Client in this package gives every adapter the same
// plumbing: a request timeout, a per-provider rate limiter and the
// mapping of non-2xx responses to *domain.ProviderError.
package connectors
