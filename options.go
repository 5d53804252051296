package sovereign

import "time"

// Option configures an Election with optional dependencies.
type Option func(*electionOptions)

// electionOptions holds optional Election configuration.
type electionOptions struct {
	logger         Logger
	metrics        MetricsCollector
	eventWorkers   int
	eventQueueSize int
	jitterFn       func() time.Duration
	now            func() time.Time
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	logger := zap.NewExample().Sugar()
//	election, err := sovereign.New("api-1", store, &cfg, sovereign.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *electionOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *electionOptions) {
		o.metrics = metrics
	}
}

// WithEventWorkers sets the number of goroutines delivering asynchronous
// event subscriptions. Values <= 0 use the default pool size.
func WithEventWorkers(workers int) Option {
	return func(o *electionOptions) {
		o.eventWorkers = workers
	}
}

// WithEventQueueSize sets the capacity of the asynchronous event queue.
// Values <= 0 use the default capacity.
func WithEventQueueSize(size int) Option {
	return func(o *electionOptions) {
		o.eventQueueSize = size
	}
}

// WithJitterFunc overrides the randomized startup delay.
//
// The default picks a uniformly random whole second in [0s, 10s) to
// desynchronize simultaneously booting instances. Tests use this to remove
// the delay entirely:
//
//	election, _ := sovereign.New(id, store, &cfg,
//	    sovereign.WithJitterFunc(func() time.Duration { return 0 }))
func WithJitterFunc(fn func() time.Duration) Option {
	return func(o *electionOptions) {
		o.jitterFn = fn
	}
}

// WithClock overrides the time source used for heartbeat timestamps and
// staleness arithmetic. Tests use this together with a memory store clock to
// simulate expiry without real waiting.
func WithClock(now func() time.Time) Option {
	return func(o *electionOptions) {
		o.now = now
	}
}
