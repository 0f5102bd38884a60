package cluster_test

import (
	"bytes"
	"encoding/base64"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/citrinedb/citrine-go/cluster"
	"github.com/citrinedb/citrine-go/digest"
	"github.com/citrinedb/citrine-go/policy"
	"github.com/citrinedb/citrine-go/wire"
)

// fakeNode is a minimal in-process server speaking just enough of the
// info protocol to be tended: it answers whatever values the test has
// configured, or swallows requests entirely when silenced.
type fakeNode struct {
	lis net.Listener

	mu     sync.Mutex
	values map[string]string
	silent bool
}

func startFakeNode(t *testing.T, name string) *fakeNode {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	n := &fakeNode{
		lis: lis,
		values: map[string]string{
			"node":                 name,
			"peers":                "",
			"partition-generation": "1",
			"replicas-all":         fullOwnership("test"),
		},
	}

	t.Cleanup(func() {
		_ = lis.Close()
	})

	go n.serve()

	return n
}

// fullOwnership reports the node as the sole owner of every partition
// of the namespace.
func fullOwnership(ns string) string {
	bitmap := bytes.Repeat([]byte{0xff}, digest.NumPartitions/8)

	return ns + ":1," + base64.StdEncoding.EncodeToString(bitmap)
}

func (n *fakeNode) addr() string {
	return n.lis.Addr().String()
}

func (n *fakeNode) set(name, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.values[name] = value
}

func (n *fakeNode) setSilent(silent bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.silent = silent
}

func (n *fakeNode) serve() {
	for {
		conn, err := n.lis.Accept()
		if err != nil {
			return
		}

		go n.handle(conn)
	}
}

func (n *fakeNode) handle(conn net.Conn) {
	defer conn.Close()

	for {
		hdr := make([]byte, wire.ProtoHeaderSize)
		if _, err := io.ReadFull(conn, hdr); err != nil {
			return
		}

		proto, err := wire.DecodeProto(hdr)
		if err != nil || proto.Type != wire.TypeInfo {
			return
		}

		body := make([]byte, proto.Size)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}

		n.mu.Lock()
		silent := n.silent

		var lines strings.Builder
		for _, name := range strings.Fields(string(body)) {
			if value, ok := n.values[name]; ok {
				lines.WriteString(name + "\t" + value + "\n")
			}
		}
		n.mu.Unlock()

		if silent {
			continue
		}

		resp := make([]byte, wire.ProtoHeaderSize+lines.Len())
		wire.EncodeProto(resp, wire.TypeInfo, uint64(lines.Len()))
		copy(resp[wire.ProtoHeaderSize:], lines.String())

		if _, err := conn.Write(resp); err != nil {
			return
		}
	}
}

func testConfig() cluster.Config {
	conf := cluster.DefaultConfig()
	conf.TendInterval = 20 * time.Millisecond
	conf.ConnectTimeout = 500 * time.Millisecond
	conf.InfoTimeout = 200 * time.Millisecond
	conf.FailureThreshold = 1
	conf.DropGrace = time.Minute

	return conf
}

func TestOpen_NoReachableSeed(t *testing.T) {
	conf := testConfig()

	_, err := cluster.Open(conf, "127.0.0.1:1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unable to reach any seed")
}

func TestOpen_NoSeeds(t *testing.T) {
	_, err := cluster.Open(testConfig())
	require.Error(t, err)
}

func TestOpen_ResolveOwners(t *testing.T) {
	node := startFakeNode(t, "node-a")

	c, err := cluster.Open(testConfig(), node.addr())
	require.NoError(t, err)
	defer c.Close()

	require.Equal(t, cluster.StateTending, c.State())

	owners, err := c.ResolveOwners("test", 42, policy.ReplicaMaster)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	require.Equal(t, "node-a", owners[0].Name())

	_, err = c.ResolveOwners("missing", 42, policy.ReplicaMaster)
	require.ErrorIs(t, err, cluster.ErrPartitionUnmapped)
}

func TestPeerDiscovery(t *testing.T) {
	nodeA := startFakeNode(t, "node-a")
	nodeB := startFakeNode(t, "node-b")

	nodeA.set("peers", "node-b@"+nodeB.addr())

	c, err := cluster.Open(testConfig(), nodeA.addr())
	require.NoError(t, err)
	defer c.Close()

	require.Eventually(t, func() bool {
		_, ok := c.Node("node-b")
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	require.Len(t, c.Nodes(), 2)
}

func TestOwnershipRefetch(t *testing.T) {
	node := startFakeNode(t, "node-a")

	c, err := cluster.Open(testConfig(), node.addr())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ResolveOwners("prod", 0, policy.ReplicaMaster)
	require.ErrorIs(t, err, cluster.ErrPartitionUnmapped)

	// A new namespace appears along with a generation bump.
	node.set("replicas-all", fullOwnership("test")+";"+fullOwnership("prod"))
	node.set("partition-generation", "2")

	require.Eventually(t, func() bool {
		_, err := c.ResolveOwners("prod", 0, policy.ReplicaMaster)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDegradedAndRecovery(t *testing.T) {
	node := startFakeNode(t, "node-a")

	c, err := cluster.Open(testConfig(), node.addr())
	require.NoError(t, err)
	defer c.Close()

	node.setSilent(true)

	require.Eventually(t, func() bool {
		return c.State() == cluster.StateDegraded
	}, 5*time.Second, 10*time.Millisecond)

	// Degraded clusters fail fast instead of burning the deadline.
	_, err = c.ResolveOwners("test", 0, policy.ReplicaMaster)
	require.ErrorIs(t, err, cluster.ErrClusterNotReady)

	node.setSilent(false)

	require.Eventually(t, func() bool {
		return c.State() == cluster.StateTending
	}, 5*time.Second, 10*time.Millisecond)

	_, err = c.ResolveOwners("test", 0, policy.ReplicaMaster)
	require.NoError(t, err)
}

func TestClose(t *testing.T) {
	node := startFakeNode(t, "node-a")

	c, err := cluster.Open(testConfig(), node.addr())
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.Equal(t, cluster.StateStopped, c.State())

	_, err = c.ResolveOwners("test", 0, policy.ReplicaMaster)
	require.ErrorIs(t, err, cluster.ErrClusterNotReady)
}
