// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentSource: Fetches the current document state from the remote API
//   - DisplaySink: Receives document content and error messages
//   - SettingsSource: Supplies the current application settings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentWriter: Commits new document content. Without it, updates are disabled.
//   - RateLimitReader: Reports API quota.
//   - CycleHistoryStore: Persists reconciliation cycles for diagnostics.
//   - ContentCache: Keeps the last raw read for conditional requests.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
