package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Traqueur-dev/Sovereign/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are registered lazily on first use so that creating a collector
// without recording anything never pollutes the registry.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	stateTransitions *prometheus.CounterVec
	electionAttempts *prometheus.CounterVec
	leaseRenewals    *prometheus.CounterVec
	heartbeats       *prometheus.CounterVec
	cycleErrors      prometheus.Counter
	isLeader         prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "sovereign" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "sovereign"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "election",
			Name:      "state_transitions_total",
			Help:      "Total role transitions by previous and new state.",
		}, []string{"from", "to"})

		p.electionAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "election",
			Name:      "attempts_total",
			Help:      "Total election attempts by result.",
		}, []string{"result"})

		p.leaseRenewals = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "election",
			Name:      "lease_renewals_total",
			Help:      "Total leader lease renewals by result.",
		}, []string{"result"})

		p.heartbeats = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "heartbeat",
			Name:      "publishes_total",
			Help:      "Total heartbeat publications by result.",
		}, []string{"result"})

		p.cycleErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "election",
			Name:      "cycle_errors_total",
			Help:      "Total election cycles that failed with an error.",
		})

		p.isLeader = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "election",
			Name:      "is_leader",
			Help:      "Whether this instance currently holds leadership (1 or 0).",
		})

		p.reg.MustRegister(
			p.stateTransitions,
			p.electionAttempts,
			p.leaseRenewals,
			p.heartbeats,
			p.cycleErrors,
			p.isLeader,
		)
	})
}

// RecordStateTransition records a role change and updates the leader gauge.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()

	if to == types.StateLeader {
		p.isLeader.Set(1)
	} else {
		p.isLeader.Set(0)
	}
}

// RecordElectionAttempt records an election attempt by result.
func (p *PrometheusCollector) RecordElectionAttempt(won bool) {
	p.ensureRegistered()
	p.electionAttempts.WithLabelValues(resultLabel(won)).Inc()
}

// RecordLeaseRenewal records a lease renewal by result.
func (p *PrometheusCollector) RecordLeaseRenewal(renewed bool) {
	p.ensureRegistered()
	p.leaseRenewals.WithLabelValues(resultLabel(renewed)).Inc()
}

// RecordHeartbeat records a heartbeat publication by result.
func (p *PrometheusCollector) RecordHeartbeat(success bool) {
	p.ensureRegistered()
	p.heartbeats.WithLabelValues(resultLabel(success)).Inc()
}

// RecordElectionCycleError records a failed election cycle.
func (p *PrometheusCollector) RecordElectionCycleError() {
	p.ensureRegistered()
	p.cycleErrors.Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}

	return "failure"
}
