package sovereign

import (
	"sync/atomic"
	"time"

	"github.com/Traqueur-dev/Sovereign/internal/eventbus"
	"github.com/Traqueur-dev/Sovereign/types"
)

// stateMachine holds the election role of an instance.
//
// All role mutation funnels through transition(), the single mutation point.
// Election and heartbeat cycles may overlap in time; the CAS loop keeps the
// role consistent without in-process locking around store calls.
type stateMachine struct {
	instanceID string
	state      atomic.Int32 // types.State
	lastChange atomic.Int64 // unix milliseconds of the last role change

	bus     *eventbus.Bus
	logger  types.Logger
	metrics types.MetricsCollector
	now     func() time.Time
}

func newStateMachine(
	instanceID string,
	bus *eventbus.Bus,
	logger types.Logger,
	metrics types.MetricsCollector,
	now func() time.Time,
) *stateMachine {
	sm := &stateMachine{
		instanceID: instanceID,
		bus:        bus,
		logger:     logger,
		metrics:    metrics,
		now:        now,
	}
	sm.state.Store(int32(types.StateFollower))
	sm.lastChange.Store(now().UnixMilli())

	return sm
}

// role returns the current election role.
func (sm *stateMachine) role() types.State {
	return types.State(sm.state.Load())
}

// lastTransition returns when the role last changed.
func (sm *stateMachine) lastTransition() time.Time {
	return time.UnixMilli(sm.lastChange.Load())
}

// transition moves the role to the given state.
//
// A transition to the current role is a no-op that produces no event. Every
// role-changing transition records the transition time and publishes a
// StateChangedEvent, plus a LeadershipAcquiredEvent when the new role is
// Leader or a LeadershipLostEvent when leadership was given up.
//
// Returns:
//   - types.State: The previous role
//   - bool: true if the role changed
func (sm *stateMachine) transition(to types.State) (types.State, bool) {
	var prev types.State
	for {
		prev = types.State(sm.state.Load())
		if prev == to {
			return prev, false
		}
		if sm.state.CompareAndSwap(int32(prev), int32(to)) {
			break
		}
	}

	now := sm.now()
	sm.lastChange.Store(now.UnixMilli())

	sm.logger.Debug("state transition",
		"instance_id", sm.instanceID,
		"from", prev.String(),
		"to", to.String(),
	)
	sm.metrics.RecordStateTransition(prev, to)

	sm.bus.Publish(types.StateChangedEvent{
		Instance: sm.instanceID,
		Time:     now,
		Previous: prev,
		New:      to,
	})

	if to == types.StateLeader {
		sm.bus.Publish(types.LeadershipAcquiredEvent{Instance: sm.instanceID, Time: now})
	} else if prev == types.StateLeader {
		sm.bus.Publish(types.LeadershipLostEvent{Instance: sm.instanceID, Time: now})
	}

	return prev, true
}
