package policy

import "time"

// NoTimeout is the sentinel timeout value meaning the request has no
// deadline and may block indefinitely.
const NoTimeout time.Duration = 0

// Base holds the knobs shared by every request: the total time budget,
// the replica selection rule and the read consistency contract.
type Base struct {
	// Timeout is the total budget for the logical request, shared by
	// all retry attempts. NoTimeout disables the deadline.
	Timeout time.Duration

	// SocketTimeout bounds a single socket read or write attempt. The
	// absolute request deadline always wins when it is sooner.
	SocketTimeout time.Duration

	Replica     ReplicaPolicy
	Consistency ConsistencyLevel
	Key         KeyPolicy
}

// Write extends Base with write-only knobs.
type Write struct {
	Base

	Commit CommitLevel
}

// Default returns the base policy used when the caller passes nil.
func Default() *Base {
	return &Base{
		Timeout:       time.Second,
		SocketTimeout: 250 * time.Millisecond,
		Replica:       ReplicaSequence,
		Consistency:   ConsistencyOne,
		Key:           KeyDigestOnly,
	}
}

// DefaultWrite returns the write policy used when the caller passes nil.
// Writes always go to the master, replica failover makes no sense for them.
func DefaultWrite() *Write {
	return &Write{
		Base: Base{
			Timeout:       time.Second,
			SocketTimeout: 250 * time.Millisecond,
			Replica:       ReplicaMaster,
			Consistency:   ConsistencyOne,
			Key:           KeyDigestOnly,
		},
		Commit: CommitAll,
	}
}

// Deadline converts the timeout into an absolute point in time. The
// zero time means no deadline.
func (p *Base) Deadline(now time.Time) time.Time {
	if p.Timeout == NoTimeout {
		return time.Time{}
	}

	return now.Add(p.Timeout)
}
