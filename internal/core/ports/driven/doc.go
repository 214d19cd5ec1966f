// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - KVStore: TTL key-value storage for auth state and credentials
//   - Connector: Provider OAuth quirks and record fetching
//   - KnowledgeStore: Per-tenant append-only embedding index
//   - ChatStore: Per-session conversation history persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, the
//     knowledge index stores documents without retrieval.
//   - LLMService: Language model operations. Without it, chat is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
