package sovereign

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Traqueur-dev/Sovereign/internal/eventbus"
	"github.com/Traqueur-dev/Sovereign/internal/logging"
	"github.com/Traqueur-dev/Sovereign/internal/metrics"
	"github.com/Traqueur-dev/Sovereign/types"
)

const (
	// staleHeartbeatGrace is added to the lease duration before a foreign
	// leader's heartbeat is considered stale. It absorbs one missed
	// heartbeat interval's worth of network jitter beyond the lease window.
	staleHeartbeatGrace = 5 * time.Second

	// cleanupHeartbeatGrace is added to the lease duration before an
	// abandoned heartbeat record is garbage collected after an election win.
	cleanupHeartbeatGrace = 10 * time.Second

	// maxStartJitterSeconds bounds the randomized startup delay.
	maxStartJitterSeconds = 10
)

// Election coordinates leader election for one instance against a shared
// coordination store.
//
// Exactly one instance in the cluster holds leadership at a time; the rest
// remain followers and take over automatically when the leader's lease
// expires or its heartbeats go stale.
//
// Thread safety:
//   - All public methods are safe for concurrent use
//   - Role transitions are atomic; overlapping cycles cannot corrupt state
//
// Lifecycle:
//   - Create with New() (or through a Factory)
//   - Call Start() to join the election
//   - Observe leadership through IsLeader()/State() or event subscriptions
//   - Call Stop() for graceful shutdown with leadership release
type Election struct {
	cfg   Config
	store types.Store
	id    string

	sm      *stateMachine
	bus     *eventbus.Bus
	logger  types.Logger
	metrics types.MetricsCollector

	jitterFn func() time.Duration
	now      func() time.Time

	running atomic.Bool

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Election instance.
//
// Returns a concrete *Election struct following the "accept interfaces,
// return structs" principle; the store parameter is the only required
// collaborator.
//
// Parameters:
//   - instanceID: Opaque identity, unique across the cluster
//   - store: Coordination store adapter (see the store subpackages)
//   - cfg: Election configuration; missing values are filled with defaults
//   - opts: Optional configuration (logger, metrics, event pool sizing)
//
// Returns:
//   - *Election: Initialized election instance
//   - error: Validation error if the configuration is invalid
//
// Example:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	cfg := sovereign.DefaultConfig()
//	election, err := sovereign.New("api-1", redisstore.New(client), &cfg)
func New(instanceID string, store types.Store, cfg *Config, opts ...Option) (*Election, error) {
	if instanceID == "" {
		return nil, ErrInstanceIDRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	options := &electionOptions{}
	for _, opt := range opts {
		opt(options)
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	now := options.now
	if now == nil {
		now = time.Now
	}

	jitterFn := options.jitterFn
	if jitterFn == nil {
		jitterFn = func() time.Duration {
			return time.Duration(rand.IntN(maxStartJitterSeconds)) * time.Second
		}
	}

	bus := eventbus.New(options.eventWorkers, options.eventQueueSize, loggerInstance)

	e := &Election{
		cfg:      *cfg,
		store:    store,
		id:       instanceID,
		bus:      bus,
		logger:   loggerInstance,
		metrics:  metricsCollector,
		jitterFn: jitterFn,
		now:      now,
	}
	e.sm = newStateMachine(instanceID, bus, loggerInstance, metricsCollector, now)

	loggerInstance.Info("election instance created", "instance_id", instanceID)

	return e, nil
}

// Start joins the election.
//
// Blocks through the randomized startup jitter and the first election
// attempt, then returns with the periodic election and heartbeat cycles
// running in the background. Starting an already running election is a
// no-op that returns immediately.
//
// Parameters:
//   - ctx: Context bounding the startup sequence only; cancelling it after
//     Start returns does not stop the election
//
// Returns:
//   - error: Context error if ctx is cancelled during the jitter delay
func (e *Election) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running.Load() {
		e.mu.Unlock()

		return nil
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.running.Store(true)
	e.mu.Unlock()

	e.logger.Info("starting election", "instance_id", e.id)

	if delay := e.jitterFn(); delay > 0 {
		e.logger.Debug("waiting startup jitter before first election",
			"instance_id", e.id,
			"delay", delay,
		)

		select {
		case <-ctx.Done():
			e.mu.Lock()
			e.cancel()
			e.running.Store(false)
			e.mu.Unlock()

			return ctx.Err()
		case <-e.ctx.Done():
			// Stopped during the jitter delay.
			return nil
		case <-time.After(delay):
		}
	}

	// The first election attempt runs immediately instead of waiting for
	// the first periodic tick; Start blocks until it has completed.
	firstDone := make(chan struct{})

	e.wg.Add(2)
	go e.electionLoop(firstDone)
	go e.heartbeatLoop()

	<-firstDone

	return nil
}

// Stop leaves the election.
//
// Cancels both periodic cycles, waits for in-flight ticks to finish, and, if
// this instance holds leadership, gracefully releases it (leader record and
// own heartbeat record deleted). Release failures are logged and swallowed;
// Stop always completes, and the instance always ends in the follower role
// even when the release was skipped or failed. Stopping a never-started or
// already stopped election is a no-op.
//
// Event delivery is shut down last, so leadership-lost listeners still fire
// for the release; a stopped Election no longer delivers events.
//
// Parameters:
//   - ctx: Context bounding the release; when it carries no deadline the
//     configured ShutdownTimeout applies
//
// Returns:
//   - error: Always nil; kept for interface stability
func (e *Election) Stop(ctx context.Context) error {
	if !e.running.CompareAndSwap(true, false) {
		return nil
	}

	e.logger.Info("stopping election", "instance_id", e.id)

	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()

	cancel()
	e.wg.Wait()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && e.cfg.ShutdownTimeout > 0 {
		var releaseCancel context.CancelFunc
		ctx, releaseCancel = context.WithTimeout(ctx, e.cfg.ShutdownTimeout)
		defer releaseCancel()
	}

	e.releaseLeadership(ctx)

	// A stopped instance is a follower no matter how the release went:
	// another instance may hold the record, or the store may be unreachable.
	// Forcing the transition here keeps State() honest and delivers the
	// leadership-lost event before the bus shuts down.
	e.sm.transition(types.StateFollower)

	e.bus.Shutdown()

	e.logger.Info("election stopped", "instance_id", e.id)

	return nil
}

// IsLeader returns true if this instance currently believes it is the leader.
func (e *Election) IsLeader() bool {
	return e.sm.role() == types.StateLeader
}

// State returns the current election role.
func (e *Election) State() types.State {
	return e.sm.role()
}

// ID returns the instance identity.
func (e *Election) ID() string {
	return e.id
}

// LastTransition returns when the role last changed.
func (e *Election) LastTransition() time.Time {
	return e.sm.lastTransition()
}

// On registers a listener for the given event kind.
//
// Parameters:
//   - kind: Event kind to receive
//   - listener: Callback for matching events
//   - async: true to dispatch on the event worker pool, false to run inline
//     on the publishing goroutine (blocking the election cycle)
//
// Returns:
//   - *Subscription: Handle for unsubscribing
func (e *Election) On(kind types.EventKind, listener types.Listener, async bool) *Subscription {
	return e.bus.Subscribe(kind, listener, async)
}

// OnLeadershipAcquired registers a listener for leadership acquisition.
func (e *Election) OnLeadershipAcquired(listener types.Listener, async bool) *Subscription {
	return e.On(types.EventLeadershipAcquired, listener, async)
}

// OnLeadershipLost registers a listener for leadership loss.
func (e *Election) OnLeadershipLost(listener types.Listener, async bool) *Subscription {
	return e.On(types.EventLeadershipLost, listener, async)
}

// WaitState waits for the election to reach the expected role within the
// timeout period.
//
// The returned channel receives exactly one value: nil if the role is
// reached in time, context.DeadlineExceeded otherwise. The channel is
// closed after sending, allowing safe use in select statements.
//
// Parameters:
//   - expected: The role to wait for
//   - timeout: Maximum duration to wait
//
// Returns:
//   - <-chan error: Channel receiving the result
//
// Example:
//
//	if err := <-election.WaitState(sovereign.StateLeader, 10*time.Second); err != nil {
//	    log.Printf("never became leader: %v", err)
//	}
func (e *Election) WaitState(expected types.State, timeout time.Duration) <-chan error {
	ch := make(chan error, 1)

	go func() {
		defer close(ch)

		if e.sm.role() == expected {
			ch <- nil
			return
		}

		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()

		timeoutTimer := time.NewTimer(timeout)
		defer timeoutTimer.Stop()

		for {
			select {
			case <-ticker.C:
				if e.sm.role() == expected {
					ch <- nil
					return
				}
			case <-timeoutTimer.C:
				ch <- context.DeadlineExceeded
				return
			}
		}
	}()

	return ch
}

// electionLoop runs the first election cycle, signals firstDone, then ticks
// until Stop. Running the first cycle inside the loop goroutine keeps it
// covered by the wait group, so Stop cannot release leadership while an
// initial attempt is still in flight.
func (e *Election) electionLoop(firstDone chan<- struct{}) {
	defer e.wg.Done()

	select {
	case <-e.ctx.Done():
		close(firstDone)
		return
	default:
	}

	e.runElectionCycle()
	close(firstDone)

	ticker := time.NewTicker(e.cfg.ElectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.runElectionCycle()
		}
	}
}

// heartbeatLoop runs the periodic heartbeat cycle until Stop.
func (e *Election) heartbeatLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.runHeartbeat()
		}
	}
}

// runElectionCycle executes one election cycle, containing all errors at the
// cycle boundary: a failed cycle is logged, reported through an
// ElectionFailedEvent, and retried on the next tick.
//
// The cycle uses its own timeout context rather than the lifecycle context
// so that a tick already in flight completes even when Stop was requested.
func (e *Election) runElectionCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.OperationTimeout)
	defer cancel()

	if err := e.electionCycle(ctx); err != nil {
		e.logger.Warn("election cycle failed",
			"instance_id", e.id,
			"error", err,
		)
		e.metrics.RecordElectionCycleError()
		e.bus.Publish(types.ElectionFailedEvent{Instance: e.id, Time: e.now(), Cause: err})
	}
}

// electionCycle reads the leader record and dispatches on its state: absent
// means attempt an election, own identity means renew, a foreign identity
// means evaluate that leader's health.
func (e *Election) electionCycle(ctx context.Context) error {
	leader, ok, err := e.store.Get(ctx, e.cfg.LeaderKey)
	if err != nil {
		return fmt.Errorf("read leader record: %w", err)
	}

	switch {
	case !ok:
		return e.attemptElection(ctx)
	case leader == e.id:
		if _, changed := e.sm.transition(types.StateLeader); changed {
			e.logger.Info("confirmed as leader", "instance_id", e.id)
		}

		return e.renewLease(ctx)
	default:
		return e.checkLeaderHealth(ctx, leader)
	}
}

// attemptElection tries to claim the leader record with a conditional
// create, then re-reads the record to confirm the claim before transitioning
// to Leader.
func (e *Election) attemptElection(ctx context.Context) error {
	e.logger.Debug("attempting leader election", "instance_id", e.id)

	created, err := e.store.CreateIfAbsent(ctx, e.cfg.LeaderKey, e.id, e.cfg.LeaseDuration)
	if err != nil {
		return fmt.Errorf("create leader record: %w", err)
	}

	if !created {
		// Election lost; read the current leader for diagnostics only.
		if leader, ok, gerr := e.store.Get(ctx, e.cfg.LeaderKey); gerr == nil && ok {
			e.logger.Debug("election lost",
				"instance_id", e.id,
				"leader", leader,
			)
		}

		e.metrics.RecordElectionAttempt(false)
		e.sm.transition(types.StateFollower)

		return nil
	}

	// The create acknowledgement alone is not trusted: re-read and require
	// our own identity before declaring victory, in case a competing write
	// interleaved with the acknowledgement.
	actual, ok, err := e.store.Get(ctx, e.cfg.LeaderKey)
	if err != nil {
		return fmt.Errorf("confirm leader record: %w", err)
	}

	if !ok || actual != e.id {
		e.logger.Warn("election race detected",
			"instance_id", e.id,
			"leader", actual,
		)
		e.metrics.RecordElectionAttempt(false)
		e.sm.transition(types.StateFollower)

		return nil
	}

	e.metrics.RecordElectionAttempt(true)
	e.sm.transition(types.StateLeader)
	e.logger.Info("elected as leader", "instance_id", e.id)

	e.cleanupStaleHeartbeats(ctx)

	return nil
}

// renewLease refreshes the leader record's expiry to the full lease
// duration. A record that no longer exists means leadership was lost
// involuntarily.
func (e *Election) renewLease(ctx context.Context) error {
	renewed, err := e.store.RefreshTTL(ctx, e.cfg.LeaderKey, e.cfg.LeaseDuration)
	if err != nil {
		return fmt.Errorf("renew leader lease: %w", err)
	}

	e.metrics.RecordLeaseRenewal(renewed)

	if !renewed {
		e.logger.Warn("leader lease renewal failed, record gone", "instance_id", e.id)
		e.sm.transition(types.StateFollower)
	} else {
		e.logger.Debug("leader lease renewed", "instance_id", e.id)
	}

	return nil
}

// checkLeaderHealth evaluates a foreign leader's heartbeat record. An
// absent, unparseable, or stale heartbeat triggers a takeover attempt; a
// healthy one demotes this instance if it incorrectly believes itself
// leader.
func (e *Election) checkLeaderHealth(ctx context.Context, leader string) error {
	raw, ok, err := e.store.Get(ctx, e.heartbeatKey(leader))
	if err != nil {
		return fmt.Errorf("read leader heartbeat: %w", err)
	}

	if !ok {
		e.logger.Info("leader not responding, attempting takeover",
			"instance_id", e.id,
			"leader", leader,
		)

		return e.attemptElection(ctx)
	}

	ts, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil {
		e.logger.Warn("invalid leader heartbeat, attempting takeover",
			"instance_id", e.id,
			"leader", leader,
			"value", raw,
		)

		return e.attemptElection(ctx)
	}

	age := e.now().Sub(time.UnixMilli(ts))
	if age > e.cfg.LeaseDuration+staleHeartbeatGrace {
		e.logger.Info("leader heartbeat is stale, attempting takeover",
			"instance_id", e.id,
			"leader", leader,
			"age", age,
		)

		return e.attemptElection(ctx)
	}

	if _, changed := e.sm.transition(types.StateFollower); changed {
		e.logger.Info("demoted, healthy leader exists",
			"instance_id", e.id,
			"leader", leader,
		)
	}

	return nil
}

// runHeartbeat writes this instance's health record if it is the leader.
// Errors are reported and otherwise ignored; a missed heartbeat is recovered
// by the next tick or surfaced through staleness detection by followers.
func (e *Election) runHeartbeat() {
	if !e.IsLeader() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.OperationTimeout)
	defer cancel()

	value := strconv.FormatInt(e.now().UnixMilli(), 10)
	err := e.store.SetWithTTL(ctx, e.heartbeatKey(e.id), value, e.cfg.LeaseDuration+staleHeartbeatGrace)
	if err != nil {
		e.metrics.RecordHeartbeat(false)
		e.logger.Warn("heartbeat failed", "instance_id", e.id, "error", err)

		return
	}

	e.metrics.RecordHeartbeat(true)
	e.logger.Debug("heartbeat sent", "instance_id", e.id)
}

// releaseLeadership deletes the leader record and this instance's heartbeat
// record, but only when the leader record still names this instance; another
// instance having already taken over is a consistent outcome, not an error.
// Store errors are logged and swallowed, never failing Stop.
func (e *Election) releaseLeadership(ctx context.Context) {
	leader, ok, err := e.store.Get(ctx, e.cfg.LeaderKey)
	if err != nil {
		e.logger.Error("failed to read leader record during release",
			"instance_id", e.id,
			"error", err,
		)

		return
	}

	if !ok || leader != e.id {
		e.logger.Debug("not the recorded leader, skipping release",
			"instance_id", e.id,
			"leader", leader,
		)

		return
	}

	if err := e.store.Delete(ctx, e.cfg.LeaderKey); err != nil {
		e.logger.Error("failed to delete leader record during release",
			"instance_id", e.id,
			"error", err,
		)

		return
	}

	if err := e.store.Delete(ctx, e.heartbeatKey(e.id)); err != nil {
		e.logger.Error("failed to delete heartbeat record during release",
			"instance_id", e.id,
			"error", err,
		)

		return
	}

	e.sm.transition(types.StateFollower)
	e.logger.Info("leadership released", "instance_id", e.id)
}

// cleanupStaleHeartbeats garbage collects abandoned heartbeat records after
// a confirmed election win. Best-effort: failures are ignored per key so one
// bad key cannot abort cleanup of the rest.
func (e *Election) cleanupStaleHeartbeats(ctx context.Context) {
	keys, err := e.store.KeysWithPrefix(ctx, e.cfg.HeartbeatKeyPrefix)
	if err != nil {
		e.logger.Debug("heartbeat cleanup skipped", "instance_id", e.id, "error", err)

		return
	}

	own := e.heartbeatKey(e.id)
	for _, key := range keys {
		if key == own {
			continue
		}

		raw, ok, gerr := e.store.Get(ctx, key)
		if gerr != nil || !ok {
			continue
		}

		ts, perr := strconv.ParseInt(raw, 10, 64)
		if perr == nil && e.now().Sub(time.UnixMilli(ts)) <= e.cfg.LeaseDuration+cleanupHeartbeatGrace {
			continue
		}

		if derr := e.store.Delete(ctx, key); derr != nil {
			continue
		}

		e.logger.Debug("cleaned up stale heartbeat", "instance_id", e.id, "key", key)
	}
}

// heartbeatKey returns the health record key for an instance.
func (e *Election) heartbeatKey(instanceID string) string {
	return e.cfg.HeartbeatKeyPrefix + instanceID
}
