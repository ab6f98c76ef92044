// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The synchronisation engine lives here: VersionTracker decides whether a
// fetched document changed, PollScheduler owns the single polling timer,
// Reconciler runs one fetch-compare-display cycle and Controller ties them
// together behind driving.SyncController.
//
// Services are pure Go with no CGO or external dependencies.
package services
