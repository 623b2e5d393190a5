// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Reader: Decodes one wire format into the information model
//   - Fetcher: Retrieves raw message bytes from a provider
//   - ProviderStore: Configured provider registry
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - MessageCache: Caches fetched wire messages. Without it, every
//     request goes to the provider.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or reader package
package driven
