package cluster

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/citrinedb/citrine-go/internal/generic"
	"github.com/citrinedb/citrine-go/policy"
	"github.com/citrinedb/citrine-go/transport"
)

// Cluster tracks the topology of one database cluster: the set of
// known nodes, their health, and the current partition ownership
// snapshot. One background tend cycle runs per handle; request paths
// only ever read published snapshots and never block the tracker.
type Cluster struct {
	conf   Config
	seeds  []string
	dialer *transport.Dialer
	logger log.Logger

	mut   sync.RWMutex
	nodes map[string]*Node

	state      int32
	partitions generic.Atomic[*PartitionMap]

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Open contacts the seed addresses, runs the first tend cycle
// synchronously and starts the background tend loop. Inability to
// reach any seed is a fatal initialization error.
func Open(conf Config, seeds ...string) (*Cluster, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("at least one seed address is required")
	}

	if conf.Logger == nil {
		conf.Logger = log.NewNopLogger()
	}

	c := &Cluster{
		conf:   conf,
		seeds:  seeds,
		dialer: transport.NewDialer(conf.ConnectTimeout),
		logger: conf.Logger,
		nodes:  make(map[string]*Node),
		stop:   make(chan struct{}),
	}

	if err := c.seed(); err != nil {
		return nil, err
	}

	c.setState(StateTending)
	c.tend()

	c.wg.Add(1)
	go c.tendLoop()

	return c, nil
}

func (c *Cluster) seed() error {
	for _, addr := range c.seeds {
		name, err := c.probe(addr)
		if err != nil {
			level.Warn(c.logger).Log("msg", "seed is unreachable", "addr", addr, "err", err)
			continue
		}

		c.addNode(name, addr)
	}

	c.mut.RLock()
	defer c.mut.RUnlock()

	if len(c.nodes) == 0 {
		return fmt.Errorf("unable to reach any seed node: %v", c.seeds)
	}

	return nil
}

// probe dials an address and asks for the node's name over a
// short-lived connection.
func (c *Cluster) probe(addr string) (string, error) {
	conn, err := c.dialer.Dial(addr)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = conn.Close()
	}()

	conn.SetDeadline(time.Now().Add(c.conf.InfoTimeout), 0)

	values, err := requestInfo(conn, "node")
	if err != nil {
		return "", err
	}

	name := values["node"]
	if name == "" {
		return "", fmt.Errorf("node at %s did not report a name", addr)
	}

	return name, nil
}

func (c *Cluster) addNode(name, addr string) *Node {
	c.mut.Lock()
	defer c.mut.Unlock()

	if node, ok := c.nodes[name]; ok {
		return node
	}

	node := newNode(name, addr, c.dialer, &c.conf)
	c.nodes[name] = node

	level.Info(c.logger).Log("msg", "node added", "node", name, "addr", addr)

	return node
}

// Node returns the node with the given name, if it is known.
func (c *Cluster) Node(name string) (*Node, bool) {
	c.mut.RLock()
	defer c.mut.RUnlock()

	node, ok := c.nodes[name]

	return node, ok
}

// Nodes returns all known nodes, inactive ones included.
func (c *Cluster) Nodes() []*Node {
	c.mut.RLock()
	defer c.mut.RUnlock()

	return generic.MapValues(c.nodes)
}

// ActiveNodes returns the nodes that currently pass health checks.
func (c *Cluster) ActiveNodes() []*Node {
	return generic.Filter(c.Nodes(), func(n *Node) bool {
		return n.Active()
	})
}

// State returns the current lifecycle state.
func (c *Cluster) State() State {
	return State(atomic.LoadInt32(&c.state))
}

func (c *Cluster) setState(next State) {
	prev := State(atomic.SwapInt32(&c.state, int32(next)))
	if prev != next {
		level.Info(c.logger).Log("msg", "cluster state changed", "from", prev, "to", next)
	}
}

// Partitions returns the latest published ownership snapshot. The ok
// result is false if no snapshot has been published yet.
func (c *Cluster) Partitions() (*PartitionMap, bool) {
	return c.partitions.Load()
}

// ResolveOwners maps a (namespace, partition) pair to the live
// candidate nodes eligible under the replica policy. It fails fast
// with ErrClusterNotReady while the cluster is degraded, so callers
// do not burn their full deadline on a known-dead cluster.
func (c *Cluster) ResolveOwners(ns string, pid int, rp policy.ReplicaPolicy) ([]*Node, error) {
	if s := c.State(); s != StateTending {
		return nil, fmt.Errorf("%w: cluster is %s", ErrClusterNotReady, s)
	}

	pm, ok := c.partitions.Load()
	if !ok {
		return nil, fmt.Errorf("%w: no partition map published", ErrClusterNotReady)
	}

	names, err := pm.Resolve(ns, pid, rp)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(names))

	c.mut.RLock()
	for _, name := range names {
		if node, ok := c.nodes[name]; ok && node.Active() {
			nodes = append(nodes, node)
		}
	}
	c.mut.RUnlock()

	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no live owner for %s:%d", ErrClusterNotReady, ns, pid)
	}

	return nodes, nil
}

// Close drains the tend loop, closes all pooled connections and
// releases the node records. The handle is unusable afterwards.
func (c *Cluster) Close() error {
	c.setState(StateShuttingDown)

	c.stopOnce.Do(func() {
		close(c.stop)
	})

	c.wg.Wait()

	c.mut.Lock()
	for _, node := range c.nodes {
		node.Close()
	}
	c.nodes = make(map[string]*Node)
	c.mut.Unlock()

	c.setState(StateStopped)

	return nil
}
