// Package types provides core type definitions and interfaces for the Sovereign library.
//
// This package contains shared types that are used across multiple packages in the
// Sovereign library. By keeping these types in a separate package, we avoid import
// cycles between the main sovereign package and its internal implementations.
//
// Key types:
//   - State: Election role of an instance (Follower, Candidate, Leader)
//   - Store: Coordination store adapter interface
//   - Event: Election lifecycle events and their kinds
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
