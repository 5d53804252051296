package sovereign

import (
	"github.com/Traqueur-dev/Sovereign/internal/eventbus"
	"github.com/Traqueur-dev/Sovereign/types"
)

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root `sovereign`
// package, while still providing a convenient `sovereign.State`,
// `sovereign.Store`, etc. for users.
type (
	State     = types.State
	EventKind = types.EventKind
	Event     = types.Event
	Listener  = types.Listener
)

// Re-export interfaces from the types subpackage for convenience.
type (
	Store            = types.Store
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export the concrete event payloads.
type (
	StateChangedEvent       = types.StateChangedEvent
	LeadershipAcquiredEvent = types.LeadershipAcquiredEvent
	LeadershipLostEvent     = types.LeadershipLostEvent
	ElectionFailedEvent     = types.ElectionFailedEvent
)

// Subscription is the handle returned by event listener registration.
type Subscription = eventbus.Subscription

// Re-export State constants from the types subpackage.
const (
	StateFollower  = types.StateFollower
	StateCandidate = types.StateCandidate
	StateLeader    = types.StateLeader
)

// Re-export EventKind constants from the types subpackage.
const (
	EventStateChanged       = types.EventStateChanged
	EventLeadershipAcquired = types.EventLeadershipAcquired
	EventLeadershipLost     = types.EventLeadershipLost
	EventElectionFailed     = types.EventElectionFailed
)
