package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Traqueur-dev/Sovereign/types"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewPrometheus(reg, "sovereign_test")

	collector.RecordStateTransition(types.StateFollower, types.StateLeader)
	collector.RecordElectionAttempt(true)
	collector.RecordElectionAttempt(false)
	collector.RecordLeaseRenewal(true)
	collector.RecordHeartbeat(true)
	collector.RecordHeartbeat(false)
	collector.RecordElectionCycleError()

	transitions := testutil.ToFloat64(
		collector.stateTransitions.WithLabelValues("Follower", "Leader"))
	require.Equal(t, float64(1), transitions)

	require.Equal(t, float64(1), testutil.ToFloat64(collector.electionAttempts.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(collector.electionAttempts.WithLabelValues("failure")))
	require.Equal(t, float64(1), testutil.ToFloat64(collector.leaseRenewals.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(collector.heartbeats.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(collector.heartbeats.WithLabelValues("failure")))
	require.Equal(t, float64(1), testutil.ToFloat64(collector.cycleErrors))

	require.Equal(t, float64(1), testutil.ToFloat64(collector.isLeader),
		"leader gauge must be set on transition to leader")

	collector.RecordStateTransition(types.StateLeader, types.StateFollower)
	require.Equal(t, float64(0), testutil.ToFloat64(collector.isLeader))
}

func TestPrometheusCollector_LazyRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewPrometheus(reg, "")

	// No metrics recorded, nothing registered.
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families)
}

func TestPrometheusCollector_DefaultNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewPrometheus(reg, "")

	collector.RecordElectionCycleError()

	families, err := reg.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "sovereign_election_cycle_errors_total" {
			found = true
		}
	}
	require.True(t, found, "metrics must live under the sovereign namespace by default")
}
