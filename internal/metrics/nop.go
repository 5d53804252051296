// Package metrics provides metrics collectors for the Sovereign library.
package metrics

import "github.com/Traqueur-dev/Sovereign/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.State) {
	// No-op
}

// RecordElectionAttempt discards the election attempt metric.
func (n *NopMetrics) RecordElectionAttempt(_ /* won */ bool) {
	// No-op
}

// RecordLeaseRenewal discards the lease renewal metric.
func (n *NopMetrics) RecordLeaseRenewal(_ /* renewed */ bool) {
	// No-op
}

// RecordHeartbeat discards the heartbeat metric.
func (n *NopMetrics) RecordHeartbeat(_ /* success */ bool) {
	// No-op
}

// RecordElectionCycleError discards the cycle error metric.
func (n *NopMetrics) RecordElectionCycleError() {
	// No-op
}
