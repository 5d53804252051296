package types

// MetricsCollector records election metrics.
//
// Implementations must be safe for concurrent use. All methods are called
// from the engine's background goroutines and must not block; heavy work
// should be offloaded.
//
// Use the built-in Prometheus collector for production monitoring, or the
// nop collector (the default) when metrics are not needed.
type MetricsCollector interface {
	// RecordStateTransition records a role change.
	RecordStateTransition(from, to State)

	// RecordElectionAttempt records a conditional-create election attempt
	// and whether this instance won.
	RecordElectionAttempt(won bool)

	// RecordLeaseRenewal records a leader lease renewal and whether the
	// lease still existed.
	RecordLeaseRenewal(renewed bool)

	// RecordHeartbeat records a heartbeat publication attempt.
	RecordHeartbeat(success bool)

	// RecordElectionCycleError records an election cycle that failed with
	// a store or interpretation error.
	RecordElectionCycleError()
}
