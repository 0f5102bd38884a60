package cluster

// State is the lifecycle state of a cluster handle.
type State int32

const (
	// StateUninitialized means no seed has been contacted yet.
	StateUninitialized State = iota

	// StateTending means the background tend loop is running and at
	// least one node is active.
	StateTending

	// StateDegraded means the tend loop is running but zero nodes are
	// active. Requests fail fast until a node recovers.
	StateDegraded

	// StateShuttingDown means Close has been called and the tend loop
	// is draining.
	StateShuttingDown

	// StateStopped means all pools are closed and node records released.
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateTending:
		return "tending"
	case StateDegraded:
		return "degraded"
	case StateShuttingDown:
		return "shutting down"
	case StateStopped:
		return "stopped"
	default:
		return ""
	}
}
