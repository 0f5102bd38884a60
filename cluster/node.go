package cluster

import (
	"sync/atomic"
	"time"

	"github.com/citrinedb/citrine-go/transport"
)

// Node represents one cluster member: its identity, address and
// connection pool. Nodes are created by the tracker when discovered
// and released once inactive beyond the configured grace period.
type Node struct {
	name string
	addr string
	pool *transport.Pool

	active   int32
	failures int32
	inflight int32

	// The fields below are owned by the tend goroutine and must not
	// be touched from request paths.
	partitionGen  int64
	ownership     map[string][][]byte
	inactiveSince time.Time
}

func newNode(name, addr string, dialer *transport.Dialer, conf *Config) *Node {
	return &Node{
		name:         name,
		addr:         addr,
		pool:         transport.NewPool(addr, dialer, conf.MaxConnsPerNode, conf.MaxIdlePerNode),
		active:       1,
		partitionGen: -1, // forces an ownership fetch on the first refresh
	}
}

// Name returns the unique node name reported by the node itself.
func (n *Node) Name() string {
	return n.name
}

// Addr returns the network address of the node.
func (n *Node) Addr() string {
	return n.addr
}

// Active returns true if the node currently passes health checks.
func (n *Node) Active() bool {
	return atomic.LoadInt32(&n.active) == 1
}

func (n *Node) setActive(active bool) {
	if active {
		atomic.StoreInt32(&n.active, 1)
	} else {
		atomic.StoreInt32(&n.active, 0)
	}
}

// failed bumps the consecutive-failure counter and returns its value.
func (n *Node) failed() int32 {
	return atomic.AddInt32(&n.failures, 1)
}

func (n *Node) resetFailures() {
	atomic.StoreInt32(&n.failures, 0)
}

// GetConn checks a connection out of the node's pool, bounded by the
// deadline. While the connection is held, the node record is pinned
// and will not be reclaimed by the tracker.
func (n *Node) GetConn(deadline time.Time) (*transport.Conn, error) {
	atomic.AddInt32(&n.inflight, 1)

	conn, err := n.pool.Acquire(deadline)
	if err != nil {
		atomic.AddInt32(&n.inflight, -1)
		return nil, err
	}

	return conn, nil
}

// PutConn returns a checked-out connection. Unhealthy connections are
// closed instead of being cached.
func (n *Node) PutConn(conn *transport.Conn, healthy bool) {
	n.pool.Release(conn, healthy)
	atomic.AddInt32(&n.inflight, -1)
}

// InFlight returns the number of requests currently holding a
// connection to this node.
func (n *Node) InFlight() int32 {
	return atomic.LoadInt32(&n.inflight)
}

// DropIdleConns sweeps the node pool's idle cache.
func (n *Node) DropIdleConns(maxAge time.Duration) {
	n.pool.DropIdle(maxAge)
}

// Close shuts down the node's connection pool.
func (n *Node) Close() {
	n.pool.Close()
}
