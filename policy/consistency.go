package policy

import "fmt"

// ConsistencyLevel defines how many replicas must be consulted for a
// read to be considered valid.
type ConsistencyLevel int

const (
	// ConsistencyOne reads from a single replica.
	ConsistencyOne ConsistencyLevel = iota

	// ConsistencyAll involves all replicas of the partition.
	ConsistencyAll
)

// String returns the string representation of the consistency level.
func (l ConsistencyLevel) String() string {
	switch l {
	case ConsistencyOne:
		return "one"
	case ConsistencyAll:
		return "all"
	default:
		return ""
	}
}

// Validate panics if the level is not a member of the enumeration.
// Validation happens once at dispatch time so that an out-of-range
// value never silently produces unset wire flags.
func (l ConsistencyLevel) Validate() {
	switch l {
	case ConsistencyOne, ConsistencyAll:
	default:
		panic(fmt.Sprintf("unknown consistency level: %d", l))
	}
}
