package sovereign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Traqueur-dev/Sovereign/internal/eventbus"
	"github.com/Traqueur-dev/Sovereign/internal/logging"
	"github.com/Traqueur-dev/Sovereign/internal/metrics"
	"github.com/Traqueur-dev/Sovereign/types"
)

func newTestStateMachine(t *testing.T) (*stateMachine, *eventbus.Bus) {
	t.Helper()

	logger := logging.NewTest(t)
	bus := eventbus.New(1, 16, logger)
	t.Cleanup(bus.Shutdown)

	return newStateMachine("api-1", bus, logger, metrics.NewNop(), time.Now), bus
}

func TestStateMachine_InitialState(t *testing.T) {
	sm, _ := newTestStateMachine(t)

	require.Equal(t, types.StateFollower, sm.role())
	require.False(t, sm.lastTransition().IsZero())
}

func TestStateMachine_Transition(t *testing.T) {
	sm, _ := newTestStateMachine(t)

	prev, changed := sm.transition(types.StateLeader)
	require.True(t, changed)
	require.Equal(t, types.StateFollower, prev)
	require.Equal(t, types.StateLeader, sm.role())

	prev, changed = sm.transition(types.StateFollower)
	require.True(t, changed)
	require.Equal(t, types.StateLeader, prev)
	require.Equal(t, types.StateFollower, sm.role())
}

func TestStateMachine_SelfTransitionIsNoOp(t *testing.T) {
	sm, bus := newTestStateMachine(t)

	events := 0
	bus.Subscribe(types.EventStateChanged, func(types.Event) error {
		events++
		return nil
	}, false)

	before := sm.lastTransition()
	time.Sleep(5 * time.Millisecond)

	prev, changed := sm.transition(types.StateFollower)
	require.False(t, changed)
	require.Equal(t, types.StateFollower, prev)
	require.Zero(t, events, "self transition must not publish an event")
	require.Equal(t, before, sm.lastTransition(), "self transition must not touch the transition time")
}

func TestStateMachine_EventOrdering(t *testing.T) {
	sm, bus := newTestStateMachine(t)

	var kinds []types.EventKind
	record := func(event types.Event) error {
		kinds = append(kinds, event.Kind())
		return nil
	}
	bus.Subscribe(types.EventStateChanged, record, false)
	bus.Subscribe(types.EventLeadershipAcquired, record, false)
	bus.Subscribe(types.EventLeadershipLost, record, false)

	sm.transition(types.StateLeader)
	sm.transition(types.StateFollower)

	require.Equal(t, []types.EventKind{
		types.EventStateChanged,
		types.EventLeadershipAcquired,
		types.EventStateChanged,
		types.EventLeadershipLost,
	}, kinds)
}

func TestStateMachine_CandidateDoesNotEmitLeadershipEvents(t *testing.T) {
	sm, bus := newTestStateMachine(t)

	var kinds []types.EventKind
	record := func(event types.Event) error {
		kinds = append(kinds, event.Kind())
		return nil
	}
	bus.Subscribe(types.EventStateChanged, record, false)
	bus.Subscribe(types.EventLeadershipAcquired, record, false)
	bus.Subscribe(types.EventLeadershipLost, record, false)

	sm.transition(types.StateCandidate)
	sm.transition(types.StateFollower)

	require.Equal(t, []types.EventKind{
		types.EventStateChanged,
		types.EventStateChanged,
	}, kinds)
}
