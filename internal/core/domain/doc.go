// Package domain defines the core business entities for docwatch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - VersionMarker: An opaque token identifying one remote document state
//   - DocumentSnapshot: A version marker paired with the document text
//   - AppSettings: Credentials, repository target and polling cadence
//   - PollCycleResult: The tagged outcome of one reconciliation cycle
//   - SyncState: What the controller currently knows about the remote
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
