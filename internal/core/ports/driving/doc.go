// Package driving defines the interfaces through which the outside world
// calls INTO the core (primary ports). The HTTP layer and CLI depend on
// these interfaces; core services implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving
