package cluster

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"
)

// tendConcurrency caps how many nodes are probed in parallel within
// one tend cycle.
const tendConcurrency = 8

func (c *Cluster) tendLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.conf.TendInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.tend()
		case <-c.stop:
			return
		}
	}
}

// tend runs one topology refresh cycle: probe every known node,
// merge discovered peers, demote and promote nodes, drop long-dead
// node records, then build and publish the next partition map. Node
// level failures are absorbed here and only ever reflected as health
// state changes, never surfaced to request paths.
func (c *Cluster) tend() {
	nodes := c.Nodes()

	var (
		mu         sync.Mutex
		discovered = make(map[string]string)
	)

	g := new(errgroup.Group)
	g.SetLimit(tendConcurrency)

	for _, node := range nodes {
		node := node

		g.Go(func() error {
			peers, err := c.refreshNode(node)
			if err != nil {
				c.nodeFailed(node, err)
				return nil
			}

			c.nodeAlive(node)

			mu.Lock()
			for name, addr := range peers {
				discovered[name] = addr
			}
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	for name, addr := range discovered {
		if _, ok := c.Node(name); !ok {
			c.addNode(name, addr)
		}
	}

	c.dropDeadNodes()
	c.publish()

	for _, node := range c.Nodes() {
		node.DropIdleConns(c.conf.IdleTimeout)
	}
}

// refreshNode performs the per-node status query of one tend cycle:
// a lightweight identity/peers/generation exchange, plus a full
// ownership refetch when the node's partition generation has moved.
func (c *Cluster) refreshNode(n *Node) (map[string]string, error) {
	deadline := time.Now().Add(c.conf.InfoTimeout)

	conn, err := n.GetConn(deadline)
	if err != nil {
		return nil, err
	}

	conn.SetDeadline(deadline, 0)

	values, err := requestInfo(conn, "node", "peers", "partition-generation")
	if err != nil {
		n.PutConn(conn, false)
		return nil, err
	}

	if name := values["node"]; name != n.name {
		n.PutConn(conn, false)
		return nil, fmt.Errorf("node at %s changed identity: %q", n.addr, name)
	}

	gen, err := strconv.ParseInt(values["partition-generation"], 10, 64)
	if err != nil {
		n.PutConn(conn, false)
		return nil, fmt.Errorf("malformed partition generation %q", values["partition-generation"])
	}

	if gen != n.partitionGen {
		replicas, err := requestInfo(conn, "replicas-all")
		if err != nil {
			n.PutConn(conn, false)
			return nil, err
		}

		owners, err := parseReplicas(replicas["replicas-all"])
		if err != nil {
			n.PutConn(conn, true)
			return nil, err
		}

		n.ownership = owners
		n.partitionGen = gen

		level.Debug(c.logger).Log("msg", "partition ownership refreshed", "node", n.name, "generation", gen)
	}

	n.PutConn(conn, true)

	return parsePeers(values["peers"]), nil
}

func (c *Cluster) nodeFailed(n *Node, err error) {
	count := n.failed()

	level.Debug(c.logger).Log("msg", "node refresh failed", "node", n.name, "failures", count, "err", err)

	if count >= int32(c.conf.FailureThreshold) && n.Active() {
		n.setActive(false)
		n.inactiveSince = time.Now()

		level.Warn(c.logger).Log("msg", "node demoted to inactive", "node", n.name, "err", err)
	}
}

func (c *Cluster) nodeAlive(n *Node) {
	if !n.Active() {
		n.setActive(true)

		level.Info(c.logger).Log("msg", "node promoted to active", "node", n.name)
	}

	n.resetFailures()
}

// dropDeadNodes releases node records that have been inactive beyond
// the grace period and are not referenced by any in-flight request.
// The last known node is always kept so a fully degraded cluster can
// still recover without re-seeding.
func (c *Cluster) dropDeadNodes() {
	cutoff := time.Now().Add(-c.conf.DropGrace)

	c.mut.Lock()
	defer c.mut.Unlock()

	for name, node := range c.nodes {
		if len(c.nodes) == 1 {
			break
		}

		if !node.Active() && node.inactiveSince.Before(cutoff) && node.InFlight() == 0 {
			delete(c.nodes, name)
			node.Close()

			level.Info(c.logger).Log("msg", "node removed", "node", name)
		}
	}
}

// publish builds the next partition map from the last known ownership
// of every active node and swaps it in atomically, then reflects the
// active-node count in the cluster state.
func (c *Cluster) publish() {
	builder := newMapBuilder()
	active := 0

	for _, node := range c.Nodes() {
		if !node.Active() {
			continue
		}

		active++

		for ns, bitmaps := range node.ownership {
			for replicaIdx, bitmap := range bitmaps {
				replicaIdx := replicaIdx
				name := node.name

				forEachSetBit(bitmap, func(pid int) {
					builder.setOwner(ns, replicaIdx, pid, name)
				})
			}
		}
	}

	c.partitions.Store(builder.build())

	switch s := c.State(); {
	case s == StateShuttingDown || s == StateStopped:
		// Do not resurrect a closing cluster.
	case active == 0:
		c.setState(StateDegraded)
	default:
		c.setState(StateTending)
	}
}
