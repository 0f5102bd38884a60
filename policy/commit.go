package policy

import "fmt"

// CommitLevel defines how many replicas must acknowledge a write
// before it is considered committed.
type CommitLevel int

const (
	// CommitAll waits for the write to be applied on all replicas.
	CommitAll CommitLevel = iota

	// CommitMaster waits for the master replica only.
	CommitMaster
)

// String returns the string representation of the commit level.
func (l CommitLevel) String() string {
	switch l {
	case CommitAll:
		return "all"
	case CommitMaster:
		return "master"
	default:
		return ""
	}
}

// Validate panics if the level is not a member of the enumeration.
func (l CommitLevel) Validate() {
	switch l {
	case CommitAll, CommitMaster:
	default:
		panic(fmt.Sprintf("unknown commit level: %d", l))
	}
}
