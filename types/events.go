package types

import "time"

// EventKind identifies the type of an election event.
type EventKind int

const (
	// EventStateChanged is published on every role transition.
	EventStateChanged EventKind = iota

	// EventLeadershipAcquired is published when this instance becomes leader.
	EventLeadershipAcquired

	// EventLeadershipLost is published when this instance loses leadership.
	EventLeadershipLost

	// EventElectionFailed is published when an election cycle fails with an error.
	EventElectionFailed
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "StateChanged"
	case EventLeadershipAcquired:
		return "LeadershipAcquired"
	case EventLeadershipLost:
		return "LeadershipLost"
	case EventElectionFailed:
		return "ElectionFailed"
	default:
		return "Unknown"
	}
}

// Event is the common interface for all election events.
//
// Events are published by the election engine to notify interested parties
// about role changes and failures. All events carry the instance identity
// and the time they occurred.
type Event interface {
	// Kind returns the event kind, used for subscription dispatch.
	Kind() EventKind

	// InstanceID returns the identity of the instance that generated the event.
	InstanceID() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Listener handles election events.
//
// Listeners are registered per event kind and may be invoked synchronously on
// the publishing goroutine or asynchronously on a worker pool, depending on
// the registration. A returned error is logged and does not affect the
// election process or other listeners.
type Listener func(event Event) error

// StateChangedEvent is published for every role transition.
//
// It carries both the previous and the new role, allowing listeners to track
// the complete transition history. A transition that does not change the role
// produces no event.
type StateChangedEvent struct {
	Instance string
	Time     time.Time
	Previous State
	New      State
}

// Kind returns EventStateChanged.
func (e StateChangedEvent) Kind() EventKind { return EventStateChanged }

// InstanceID returns the identity of the instance that transitioned.
func (e StateChangedEvent) InstanceID() string { return e.Instance }

// Timestamp returns when the transition occurred.
func (e StateChangedEvent) Timestamp() time.Time { return e.Time }

// LeadershipAcquiredEvent is published when this instance becomes leader.
type LeadershipAcquiredEvent struct {
	Instance string
	Time     time.Time
}

// Kind returns EventLeadershipAcquired.
func (e LeadershipAcquiredEvent) Kind() EventKind { return EventLeadershipAcquired }

// InstanceID returns the identity of the new leader.
func (e LeadershipAcquiredEvent) InstanceID() string { return e.Instance }

// Timestamp returns when leadership was acquired.
func (e LeadershipAcquiredEvent) Timestamp() time.Time { return e.Time }

// LeadershipLostEvent is published when this instance loses leadership,
// whether voluntarily (graceful release) or involuntarily (lease expiry,
// demotion by a healthier leader).
type LeadershipLostEvent struct {
	Instance string
	Time     time.Time
}

// Kind returns EventLeadershipLost.
func (e LeadershipLostEvent) Kind() EventKind { return EventLeadershipLost }

// InstanceID returns the identity of the demoted instance.
func (e LeadershipLostEvent) InstanceID() string { return e.Instance }

// Timestamp returns when leadership was lost.
func (e LeadershipLostEvent) Timestamp() time.Time { return e.Time }

// ElectionFailedEvent is published when an election cycle fails with an error.
//
// It does not mean the instance cannot participate in future elections; the
// next scheduled cycle retries. Common causes are store communication errors.
type ElectionFailedEvent struct {
	Instance string
	Time     time.Time
	Cause    error
}

// Kind returns EventElectionFailed.
func (e ElectionFailedEvent) Kind() EventKind { return EventElectionFailed }

// InstanceID returns the identity of the instance whose cycle failed.
func (e ElectionFailedEvent) InstanceID() string { return e.Instance }

// Timestamp returns when the failure occurred.
func (e ElectionFailedEvent) Timestamp() time.Time { return e.Time }
