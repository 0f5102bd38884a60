package cluster

import (
	"fmt"

	"github.com/citrinedb/citrine-go/digest"
	"github.com/citrinedb/citrine-go/internal/generic"
	"github.com/citrinedb/citrine-go/policy"
)

// PartitionMap is an immutable snapshot of partition ownership. The
// tracker builds a complete new map on every refresh and publishes it
// wholesale, so readers never observe a half-built view. Owners are
// referenced by node name rather than by live pointer, which keeps
// snapshots decoupled from node record lifetimes.
type PartitionMap struct {
	// tables maps a namespace to its replica-major ownership table:
	// tables[ns][replicaIdx][partitionID] is the owner's node name,
	// or "" if that slot is unowned.
	tables map[string][][]string
}

// Namespaces returns the namespaces the snapshot knows about.
func (m *PartitionMap) Namespaces() []string {
	return generic.SortedKeys(m.tables)
}

// Resolve returns the ordered candidate node names for a partition
// under the given replica policy: position 0 is the master, the rest
// are replicas in ownership order. ReplicaAny returns the owners in
// random order for client-side load balancing.
func (m *PartitionMap) Resolve(ns string, pid int, rp policy.ReplicaPolicy) ([]string, error) {
	if pid < 0 || pid >= digest.NumPartitions {
		return nil, fmt.Errorf("partition id %d out of range", pid)
	}

	table, ok := m.tables[ns]
	if !ok {
		return nil, fmt.Errorf("%w: namespace %q", ErrPartitionUnmapped, ns)
	}

	var names []string

	for _, replica := range table {
		if name := replica[pid]; name != "" {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s:%d", ErrPartitionUnmapped, ns, pid)
	}

	switch rp {
	case policy.ReplicaMaster:
		if table[0][pid] == "" {
			return nil, fmt.Errorf("%w: %s:%d has no master", ErrPartitionUnmapped, ns, pid)
		}

		names = names[:1]
	case policy.ReplicaSequence:
		// Ownership order as-is.
	case policy.ReplicaAny:
		generic.Shuffle(names)
	default:
		panic(fmt.Sprintf("unknown replica policy: %d", rp))
	}

	return names, nil
}

// mapBuilder accumulates per-node ownership bitmaps into the next
// PartitionMap. It is used by the tend cycle only.
type mapBuilder struct {
	tables map[string][][]string
}

func newMapBuilder() *mapBuilder {
	return &mapBuilder{tables: make(map[string][][]string)}
}

func (b *mapBuilder) setOwner(ns string, replicaIdx, pid int, node string) {
	table := b.tables[ns]

	for len(table) <= replicaIdx {
		table = append(table, make([]string, digest.NumPartitions))
	}

	b.tables[ns] = table
	table[replicaIdx][pid] = node
}

func (b *mapBuilder) build() *PartitionMap {
	return &PartitionMap{tables: b.tables}
}

// forEachSetBit walks the set bits of an ownership bitmap. Bit p of
// the bitmap corresponds to partition p, most significant bit first
// within each byte.
func forEachSetBit(bitmap []byte, f func(pid int)) {
	for pid := 0; pid < digest.NumPartitions && pid/8 < len(bitmap); pid++ {
		if bitmap[pid/8]&(0x80>>uint(pid%8)) != 0 {
			f(pid)
		}
	}
}
