package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citrinedb/citrine-go/policy"
)

// bitmapOf returns an ownership bitmap with the given partitions set.
func bitmapOf(pids ...int) []byte {
	bitmap := make([]byte, 512)

	for _, pid := range pids {
		bitmap[pid/8] |= 0x80 >> uint(pid%8)
	}

	return bitmap
}

func TestForEachSetBit(t *testing.T) {
	var got []int

	forEachSetBit([]byte{0x80, 0x01}, func(pid int) {
		got = append(got, pid)
	})

	require.Equal(t, []int{0, 15}, got)
}

func TestForEachSetBit_ShortBitmap(t *testing.T) {
	count := 0

	forEachSetBit([]byte{0xff}, func(pid int) {
		count++
	})

	require.Equal(t, 8, count)
}

func buildTestMap() *PartitionMap {
	builder := newMapBuilder()

	// Partition 7 of "test" has a master and one replica, partition 8
	// has a replica but no master.
	builder.setOwner("test", 0, 7, "node-a")
	builder.setOwner("test", 1, 7, "node-b")
	builder.setOwner("test", 1, 8, "node-b")

	return builder.build()
}

func TestResolve_Master(t *testing.T) {
	pm := buildTestMap()

	names, err := pm.Resolve("test", 7, policy.ReplicaMaster)
	require.NoError(t, err)
	require.Equal(t, []string{"node-a"}, names)

	_, err = pm.Resolve("test", 8, policy.ReplicaMaster)
	require.ErrorIs(t, err, ErrPartitionUnmapped)
}

func TestResolve_Sequence(t *testing.T) {
	pm := buildTestMap()

	names, err := pm.Resolve("test", 7, policy.ReplicaSequence)
	require.NoError(t, err)
	require.Equal(t, []string{"node-a", "node-b"}, names)

	names, err = pm.Resolve("test", 8, policy.ReplicaSequence)
	require.NoError(t, err)
	require.Equal(t, []string{"node-b"}, names)
}

func TestResolve_Any(t *testing.T) {
	pm := buildTestMap()

	names, err := pm.Resolve("test", 7, policy.ReplicaAny)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"node-a", "node-b"}, names)
}

func TestResolve_Unmapped(t *testing.T) {
	pm := buildTestMap()

	_, err := pm.Resolve("missing", 7, policy.ReplicaMaster)
	require.ErrorIs(t, err, ErrPartitionUnmapped)

	_, err = pm.Resolve("test", 9, policy.ReplicaSequence)
	require.ErrorIs(t, err, ErrPartitionUnmapped)
}

func TestResolve_OutOfRange(t *testing.T) {
	pm := buildTestMap()

	_, err := pm.Resolve("test", -1, policy.ReplicaMaster)
	require.Error(t, err)

	_, err = pm.Resolve("test", 4096, policy.ReplicaMaster)
	require.Error(t, err)
}

func TestNamespaces(t *testing.T) {
	builder := newMapBuilder()
	builder.setOwner("zulu", 0, 0, "node-a")
	builder.setOwner("alpha", 0, 0, "node-a")

	require.Equal(t, []string{"alpha", "zulu"}, builder.build().Namespaces())
}
