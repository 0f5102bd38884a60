package digest

import (
	"encoding/hex"

	"github.com/twmb/murmur3"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // routing hash, not security-sensitive
)

// NumPartitions is the fixed number of partitions per namespace. Every
// digest maps to exactly one partition in [0, NumPartitions).
const NumPartitions = 4096

// Size is the length of a record digest in bytes.
const Size = ripemd160.Size

// Digest is the unique identity of a (set, key) pair under the routing
// hash. It is a value type: compared and copied, never mutated.
type Digest [Size]byte

// Compute hashes the set name and key bytes into a digest. The result
// is deterministic across processes and client implementations, since
// the server computes partition ownership from the same function.
func Compute(set string, key []byte) Digest {
	h := ripemd160.New()
	h.Write([]byte(set))
	h.Write(key)

	var d Digest
	h.Sum(d[:0])

	return d
}

// String returns the hex representation of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// PartitionID returns the partition the digest belongs to.
func PartitionID(d Digest) int {
	return int(murmur3.Sum32(d[:]) % NumPartitions)
}
