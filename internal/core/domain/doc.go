// Package domain defines the core business entities for Weave.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Item: A provider record after normalisation
//   - AuthState: A pending OAuth authorization
//   - CredentialRecord: Exchanged OAuth tokens awaiting handoff
//   - Turn: A single message in a conversation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
