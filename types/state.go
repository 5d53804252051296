package types

// State represents the election role of an instance.
//
// Roles during normal operation:
//
//	StateFollower → StateLeader (election won)
//	StateLeader → StateFollower (lease lost, healthier leader found, or released)
//
// StateCandidate is reserved for an in-progress election attempt. The current
// algorithm resolves every election to Follower or Leader within a single
// cycle, so no instance durably occupies it. The value is kept for API
// compatibility and future use.
type State int

const (
	// StateFollower is the initial state; the instance defers to another leader.
	StateFollower State = iota

	// StateCandidate indicates an election attempt is in progress.
	StateCandidate

	// StateLeader indicates this instance currently holds the leader lease.
	StateLeader
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateFollower:
		return "Follower"
	case StateCandidate:
		return "Candidate"
	case StateLeader:
		return "Leader"
	default:
		return "Unknown"
	}
}
