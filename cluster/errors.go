package cluster

import "errors"

var (
	// ErrClusterNotReady is returned when no node is able to serve the
	// request: no snapshot has been published yet, the cluster is
	// degraded, or every candidate for the partition is gone.
	ErrClusterNotReady = errors.New("cluster is not ready")

	// ErrPartitionUnmapped is returned when ownership of the partition
	// is unknown, e.g. during a migration window.
	ErrPartitionUnmapped = errors.New("partition ownership unknown")
)
