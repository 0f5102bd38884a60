package policy

// ReplicaPolicy controls which of a partition's owners are eligible
// targets for a single request.
type ReplicaPolicy int

const (
	// ReplicaMaster sends the request to the partition master only.
	ReplicaMaster ReplicaPolicy = iota

	// ReplicaSequence tries the master first, then the replicas in
	// ownership order.
	ReplicaSequence

	// ReplicaAny distributes requests across all owners in random order.
	ReplicaAny
)

// String returns the string representation of the replica policy.
func (p ReplicaPolicy) String() string {
	switch p {
	case ReplicaMaster:
		return "master"
	case ReplicaSequence:
		return "sequence"
	case ReplicaAny:
		return "any"
	default:
		return ""
	}
}
